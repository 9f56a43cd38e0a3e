package auth

import (
	"context"
	"errors"
	"testing"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/storetest"
	"go-gamifier/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type crew struct {
	store                            *storetest.Store
	org, otherOrg                    primitive.ObjectID
	admin, manager, ensign, outsider *models.User
}

func newCrew() *crew {
	c := &crew{store: storetest.New(), org: primitive.NewObjectID(), otherOrg: primitive.NewObjectID()}
	put := func(u *models.User) *models.User {
		u.ID = primitive.NewObjectID()
		c.store.Users.Put(u)
		return u
	}
	c.admin = put(&models.User{OrganizationID: c.org, EmployeeID: "A1", Role: models.RoleAdmin})
	c.manager = put(&models.User{OrganizationID: c.org, EmployeeID: "M1", Role: models.RoleUser})
	c.ensign = put(&models.User{OrganizationID: c.org, EmployeeID: "E1", ManagerEmployeeID: "M1", Role: models.RoleUser})
	c.outsider = put(&models.User{OrganizationID: c.otherOrg, EmployeeID: "X1", Role: models.RoleAdmin})
	return c
}

func as(u *models.User) context.Context {
	return context.WithValue(context.Background(), utils.UserClaimsKey, &utils.UserClaims{UserID: u.ID.Hex()})
}

func TestIdentityChecks(t *testing.T) {
	c := newCrew()
	id := &IdentityImpl{UserRepo: c.store.Users}
	ctx := context.Background()

	if _, err := id.CurrentUserID(ctx); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("anonymous context: expected forbidden, got %v", err)
	}
	if ok, _ := id.IsDirectManager(ctx, c.manager.ID.Hex(), c.ensign.ID.Hex()); !ok {
		t.Error("M1 manages E1")
	}
	if ok, _ := id.IsDirectManager(ctx, c.admin.ID.Hex(), c.ensign.ID.Hex()); ok {
		t.Error("admins are not direct managers")
	}

	tests := []struct {
		name  string
		actor *models.User
		org   string
		want  bool
	}{
		{"admin of own org", c.admin, c.org.Hex(), true},
		{"admin, implicit org", c.admin, "", true},
		{"admin of another org", c.outsider, c.org.Hex(), false},
		{"employee", c.manager, c.org.Hex(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := id.HasAdminRole(ctx, tt.actor.ID.Hex(), tt.org)
			if err != nil || ok != tt.want {
				t.Errorf("got %v (%v), want %v", ok, err, tt.want)
			}
		})
	}
	if ok, err := id.HasAdminRole(ctx, primitive.NewObjectID().Hex(), ""); ok || err != nil {
		t.Errorf("unknown user: got %v (%v)", ok, err)
	}
}

func TestRequireHelpers(t *testing.T) {
	c := newCrew()
	id := &IdentityImpl{UserRepo: c.store.Users}

	if actor, err := id.RequireAdmin(as(c.admin), c.org.Hex()); err != nil || actor != c.admin.ID.Hex() {
		t.Errorf("RequireAdmin: %s %v", actor, err)
	}
	if _, err := id.RequireAdmin(as(c.ensign), c.org.Hex()); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("RequireAdmin for an employee: %v", err)
	}

	if _, err := id.RequireMember(as(c.ensign), c.org.Hex()); err != nil {
		t.Errorf("RequireMember: %v", err)
	}
	if _, err := id.RequireMember(as(c.outsider), c.org.Hex()); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("RequireMember for an outsider: %v", err)
	}

	access := []struct {
		name          string
		actor, target *models.User
		allowed       bool
	}{
		{"self", c.ensign, c.ensign, true},
		{"admin", c.admin, c.ensign, true},
		{"peer", c.manager, c.ensign, false},
		{"foreign admin", c.outsider, c.ensign, false},
	}
	for _, tt := range access {
		t.Run(tt.name, func(t *testing.T) {
			_, err := id.RequireUserAccess(as(tt.actor), tt.target.ID.Hex())
			if (err == nil) != tt.allowed {
				t.Errorf("allowed=%v, got %v", tt.allowed, err)
			}
		})
	}
}
