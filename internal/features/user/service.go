package user

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/database"
	"go-gamifier/internal/features/event"
	"go-gamifier/pkg/tabular"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxNameLength = 100

type OrganizationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

// CacheInvalidator drops cached standings of an organization.
type CacheInvalidator interface {
	Invalidate(organizationID string)
}

type UserService interface {
	CreateUser(ctx context.Context, organizationID string, in UserInput, actorID string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error)
	ListUsers(ctx context.Context, organizationID string, page, limit int64) (*UserPage, error)
	DirectReports(ctx context.Context, managerID string) ([]models.User, error)

	// ImportUsers creates one user per row. Rows fail independently; line numbers are
	// 1-based over data rows.
	ImportUsers(ctx context.Context, organizationID string, rows []tabular.Row, actorID string) (*models.ImportResult, error)
	ImportUsersFile(ctx context.Context, organizationID, filename string, r io.Reader, actorID string) (*models.ImportResult, error)
}

type UserServiceImpl struct {
	UserRepo  UserRepository
	OrgRepo   OrganizationFinder
	Events    event.Appender
	Publisher event.Publisher
	Tx        database.Transactor
	Cache     CacheInvalidator
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewUserService(
	userRepo UserRepository,
	orgRepo OrganizationFinder,
	events event.Appender,
	publisher event.Publisher,
	tx database.Transactor,
	cache CacheInvalidator,
	logger *zap.Logger,
) UserService {
	return &UserServiceImpl{
		UserRepo:  userRepo,
		OrgRepo:   orgRepo,
		Events:    events,
		Publisher: publisher,
		Tx:        tx,
		Cache:     cache,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, organizationID string, in UserInput, actorID string) (*models.User, error) {
	org, err := s.OrgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if !org.Active {
		return nil, errs.Validation("Organization is not active: %s", org.Name)
	}

	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if in.EmployeeID == "" {
		return nil, errs.Validation("Employee ID is required")
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	profile := ProfileInput{
		Name:              in.Name,
		Surname:           in.Surname,
		ManagerEmployeeID: in.ManagerEmployeeID,
		Department:        in.Department,
		Role:              role,
	}
	if err := validateProfile(&profile); err != nil {
		return nil, err
	}

	if _, err := s.UserRepo.FindByEmployeeID(ctx, organizationID, in.EmployeeID); err == nil {
		return nil, errs.Conflict("Employee ID already exists: %s", in.EmployeeID)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if err := s.checkManagerChain(ctx, organizationID, in.EmployeeID, profile.ManagerEmployeeID); err != nil {
		return nil, err
	}

	now := s.Now()
	u := &models.User{
		ID:                primitive.NewObjectID(),
		OrganizationID:    org.ID,
		EmployeeID:        in.EmployeeID,
		Name:              profile.Name,
		Surname:           profile.Surname,
		ManagerEmployeeID: profile.ManagerEmployeeID,
		Department:        profile.Department,
		Role:              profile.Role,
		MissionProgress:   map[string]*models.MissionProgress{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	registered := models.Event{
		ID:             primitive.NewObjectID(),
		OrganizationID: org.ID,
		UserID:         u.ID.Hex(),
		Type:           models.EventUserRegistered,
		Message:        "User registered: " + u.FullName(),
		RefID:          actorID,
		Timestamp:      now,
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.UserRepo.Create(ctx, u); err != nil {
			return err
		}
		return s.Events.Append(ctx, registered)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(org.ID.Hex())
	s.Publisher.Publish([]models.Event{registered})

	s.Logger.Info("User created",
		zap.String("organizationId", organizationID),
		zap.String("userId", u.ID.Hex()),
		zap.String("employeeId", u.EmployeeID))
	return u, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	in.Role = role
	if err := validateProfile(&in); err != nil {
		return nil, err
	}
	if in.ManagerEmployeeID != u.ManagerEmployeeID {
		if err := s.checkManagerChain(ctx, u.OrganizationID.Hex(), u.EmployeeID, in.ManagerEmployeeID); err != nil {
			return nil, err
		}
	}

	u.Name = in.Name
	u.Surname = in.Surname
	u.ManagerEmployeeID = in.ManagerEmployeeID
	u.Department = in.Department
	u.Role = in.Role
	u.UpdatedAt = s.Now()
	if err := s.UserRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(u.OrganizationID.Hex())
	return u, nil
}

func (s *UserServiceImpl) invalidate(organizationID string) {
	if s.Cache != nil {
		s.Cache.Invalidate(organizationID)
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, organizationID string, page, limit int64) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	users, total, err := s.UserRepo.ListByOrganization(ctx, organizationID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserServiceImpl) DirectReports(ctx context.Context, managerID string) ([]models.User, error) {
	manager, err := s.UserRepo.FindByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return s.UserRepo.ListByManager(ctx, manager.OrganizationID.Hex(), manager.EmployeeID)
}

func (s *UserServiceImpl) ImportUsers(ctx context.Context, organizationID string, rows []tabular.Row, actorID string) (*models.ImportResult, error) {
	if _, err := s.OrgRepo.FindByID(ctx, organizationID); err != nil {
		return nil, err
	}
	result := models.NewImportResult()
	for i, row := range rows {
		_, err := s.CreateUser(ctx, organizationID, UserInput{
			EmployeeID:        row.Get("employee_id"),
			Name:              row.Get("name"),
			Surname:           row.Get("surname"),
			ManagerEmployeeID: row.Get("manager_employee_id"),
			Department:        row.Get("department"),
			Role:              models.Role(row.Get("role")),
		}, actorID)
		result.Record(i+1, err)
	}

	s.Logger.Info("User import finished",
		zap.String("organizationId", organizationID),
		zap.Int("total", result.TotalRecords),
		zap.Int("failed", result.FailedImports))
	return result, nil
}

func (s *UserServiceImpl) ImportUsersFile(ctx context.Context, organizationID, filename string, r io.Reader, actorID string) (*models.ImportResult, error) {
	headers, rows, err := tabular.Read(filename, r)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	if err := tabular.RequireHeaders(headers, importHeaders...); err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	return s.ImportUsers(ctx, organizationID, rows, actorID)
}

// checkManagerChain walks up from managerEmployeeID and rejects the assignment when
// the chain reaches employeeID. Managers not yet registered end the walk.
func (s *UserServiceImpl) checkManagerChain(ctx context.Context, organizationID, employeeID, managerEmployeeID string) error {
	if managerEmployeeID == "" {
		return nil
	}
	if managerEmployeeID == employeeID {
		return errs.Validation("User cannot be their own manager")
	}
	seen := map[string]bool{employeeID: true}
	next := managerEmployeeID
	for next != "" {
		if seen[next] {
			return errs.Validation("Manager assignment would create a cycle: %s", managerEmployeeID)
		}
		seen[next] = true
		m, err := s.UserRepo.FindByEmployeeID(ctx, organizationID, next)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		next = m.ManagerEmployeeID
	}
	return nil
}

func normalizeRole(r models.Role) (models.Role, error) {
	r = models.Role(strings.ToUpper(strings.TrimSpace(string(r))))
	if r == "" {
		return models.RoleUser, nil
	}
	if !r.Valid() {
		return "", errs.Validation("Unknown role: %s", r)
	}
	return r, nil
}

func validateProfile(in *ProfileInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.ManagerEmployeeID = strings.TrimSpace(in.ManagerEmployeeID)
	in.Department = strings.TrimSpace(in.Department)
	if in.Name == "" {
		return errs.Validation("Name is required")
	}
	if len(in.Name) > maxNameLength || len(in.Surname) > maxNameLength {
		return errs.Validation("Name and surname must be at most %d characters", maxNameLength)
	}
	return nil
}
