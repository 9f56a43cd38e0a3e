package auth

import (
	"context"
	"errors"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/pkg/utils"
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Identity answers who is calling and what they may do. Roles and manager links are
// always read from the user store, token claims only carry the user id.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
	OrganizationOf(ctx context.Context, userID string) (string, error)
	IsDirectManager(ctx context.Context, managerID, subordinateID string) (bool, error)
	HasAdminRole(ctx context.Context, userID, organizationID string) (bool, error)
	CanAccessUser(ctx context.Context, actorID, targetUserID string) (bool, error)

	// RequireAdmin returns the caller id, or Forbidden when the caller is not an admin of organizationID.
	RequireAdmin(ctx context.Context, organizationID string) (string, error)
	// RequireMember returns the caller id, or Forbidden when the caller belongs to another organization.
	RequireMember(ctx context.Context, organizationID string) (string, error)
	// RequireUserAccess returns the caller id, or Forbidden when the caller may not read targetUserID.
	RequireUserAccess(ctx context.Context, targetUserID string) (string, error)
}

type IdentityImpl struct {
	UserRepo UserFinder
}

func NewIdentity(userRepo UserFinder) Identity {
	return &IdentityImpl{UserRepo: userRepo}
}

func (s *IdentityImpl) CurrentUserID(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims.UserID == "" {
		return "", errs.Forbidden("Authentication required")
	}
	return claims.UserID, nil
}

func (s *IdentityImpl) OrganizationOf(ctx context.Context, userID string) (string, error) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.OrganizationID.Hex(), nil
}

func (s *IdentityImpl) IsDirectManager(ctx context.Context, managerID, subordinateID string) (bool, error) {
	manager, err := s.UserRepo.FindByID(ctx, managerID)
	if err != nil {
		return false, err
	}
	sub, err := s.UserRepo.FindByID(ctx, subordinateID)
	if err != nil {
		return false, err
	}
	return manager.IsDirectManagerOf(sub), nil
}

// HasAdminRole checks the user's own organization when organizationID is empty.
func (s *IdentityImpl) HasAdminRole(ctx context.Context, userID, organizationID string) (bool, error) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if organizationID != "" && u.OrganizationID.Hex() != organizationID {
		return false, nil
	}
	return u.IsAdmin(), nil
}

func (s *IdentityImpl) CanAccessUser(ctx context.Context, actorID, targetUserID string) (bool, error) {
	if actorID == targetUserID {
		return true, nil
	}
	target, err := s.UserRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return false, err
	}
	return s.HasAdminRole(ctx, actorID, target.OrganizationID.Hex())
}

func (s *IdentityImpl) RequireAdmin(ctx context.Context, organizationID string) (string, error) {
	actorID, err := s.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	ok, err := s.HasAdminRole(ctx, actorID, organizationID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.Forbidden("Admin role required for organization %s", organizationID)
	}
	return actorID, nil
}

func (s *IdentityImpl) RequireUserAccess(ctx context.Context, targetUserID string) (string, error) {
	actorID, err := s.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	ok, err := s.CanAccessUser(ctx, actorID, targetUserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.Forbidden("Access denied to user %s", targetUserID)
	}
	return actorID, nil
}

func (s *IdentityImpl) RequireMember(ctx context.Context, organizationID string) (string, error) {
	actorID, err := s.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	orgID, err := s.OrganizationOf(ctx, actorID)
	if err != nil {
		return "", err
	}
	if orgID != organizationID {
		return "", errs.Forbidden("Access denied to organization %s", organizationID)
	}
	return actorID, nil
}
