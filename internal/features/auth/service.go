package auth

import (
	"context"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/pkg/utils"

	"go.uber.org/zap"
)

const tokenTTL = 72 * time.Hour

type OrganizationFinder interface {
	FindByFederationID(ctx context.Context, federationID string) (*models.Organization, error)
}

type LoginRecorder interface {
	UserFinder
	FindByEmployeeID(ctx context.Context, organizationID, employeeID string) (*models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

type AuthService interface {
	// Login issues a token for an employee of a federated organization. Federation
	// itself happens upstream; this endpoint only exists when dev login is enabled.
	Login(ctx context.Context, federationID, employeeID string) (string, *models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	UserRepo      LoginRecorder
	OrgRepo       OrganizationFinder
	Logger        *zap.Logger
	AllowDevLogin bool
	Now           func() time.Time
}

func NewAuthService(userRepo LoginRecorder, orgRepo OrganizationFinder, logger *zap.Logger, cfg *config.Config) AuthService {
	utils.SetSecret(cfg.JWTSecret)
	return &AuthServiceImpl{
		UserRepo:      userRepo,
		OrgRepo:       orgRepo,
		Logger:        logger,
		AllowDevLogin: cfg.AllowDevLogin,
		Now:           time.Now,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, federationID, employeeID string) (string, *models.User, error) {
	if !s.AllowDevLogin {
		return "", nil, errs.Forbidden("Direct login is disabled")
	}
	if federationID == "" || employeeID == "" {
		return "", nil, errs.Validation("federation_id and employee_id are required")
	}

	org, err := s.OrgRepo.FindByFederationID(ctx, federationID)
	if err != nil {
		return "", nil, err
	}
	if !org.Active {
		return "", nil, errs.Forbidden("Organization is not active")
	}
	user, err := s.UserRepo.FindByEmployeeID(ctx, org.ID.Hex(), employeeID)
	if err != nil {
		return "", nil, err
	}

	token, err := utils.GenerateToken(user.ID, user.OrganizationID, string(user.Role), tokenTTL)
	if err != nil {
		return "", nil, err
	}
	if err := s.UserRepo.RecordLogin(ctx, user.ID.Hex(), s.Now()); err != nil {
		return "", nil, err
	}

	s.Logger.Info("User logged in",
		zap.String("organizationId", org.ID.Hex()),
		zap.String("userId", user.ID.Hex()))
	return token, user, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}
