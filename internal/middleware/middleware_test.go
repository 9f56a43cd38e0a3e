package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"go-gamifier/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockAdminChecker struct {
	admins map[string]string // user id -> organization id
}

func (m *MockAdminChecker) HasAdminRole(ctx context.Context, userID, organizationID string) (bool, error) {
	org, ok := m.admins[userID]
	return ok && (organizationID == "" || org == organizationID), nil
}

func newApp(skipAuth bool, checker AdminChecker) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(skipAuth))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(Claims(c).UserID)
	})
	app.Get("/orgs/:orgId/admin", RequireOrgAdmin(checker, "orgId"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetSecret("test-secret")
	userID, orgID := primitive.NewObjectID(), primitive.NewObjectID()
	token, _ := utils.GenerateToken(userID, orgID, "USER", time.Hour)
	app := newApp(false, &MockAdminChecker{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestDevUserHeader(t *testing.T) {
	app := newApp(true, &MockAdminChecker{})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without the dev header, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(DevUserHeader, "picard")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 with the dev header, got %d", resp.StatusCode)
	}
}

func TestRequireOrgAdmin(t *testing.T) {
	app := newApp(true, &MockAdminChecker{admins: map[string]string{"picard": "ufp"}})

	tests := []struct {
		user, org string
		want      int
	}{
		{"picard", "ufp", fiber.StatusNoContent},
		{"picard", "maquis", fiber.StatusForbidden},
		{"riker", "ufp", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/orgs/"+tt.org+"/admin", nil)
		req.Header.Set(DevUserHeader, tt.user)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != tt.want {
			t.Errorf("%s on %s: expected %d, got %d", tt.user, tt.org, tt.want, resp.StatusCode)
		}
	}
}
