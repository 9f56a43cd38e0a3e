package utils

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	userID, orgID := primitive.NewObjectID(), primitive.NewObjectID()

	token, err := GenerateToken(userID, orgID, "ADMIN", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID.Hex() || claims.OrganizationID != orgID.Hex() || claims.Role != "ADMIN" {
		t.Errorf("unexpected claims %+v", claims)
	}

	SetSecret("rotated")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestExpiredToken(t *testing.T) {
	SetSecret("test-secret")
	token, _ := GenerateToken(primitive.NewObjectID(), primitive.NewObjectID(), "EMPLOYEE", -time.Minute)
	if _, err := ValidateToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"United Federation of Planets": "united-federation-of-planets",
		"  U.S.S. Enterprise (NCC-1701) ": "u-s-s-enterprise-ncc-1701",
		"!!!": "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
