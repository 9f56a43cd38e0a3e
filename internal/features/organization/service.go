package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/internal/database"
	"go-gamifier/internal/features/event"
	"go-gamifier/pkg/keylock"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached standings of an organization. Rank names and
// insignia are part of every leaderboard entry.
type CacheInvalidator interface {
	Invalidate(organizationID string)
}

type OrganizationService interface {
	CreateOrganization(ctx context.Context, in OrganizationInput, actorID string) (*models.Organization, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationByFederationID(ctx context.Context, federationID string) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, id string, in OrganizationInput, actorID string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, activeOnly bool) ([]models.Organization, error)

	ListActionTypes(ctx context.Context, orgID string, includeInactive bool) ([]models.ActionType, error)
	GetActionType(ctx context.Context, orgID, id string) (*models.ActionType, error)
	GetActionTypeByName(ctx context.Context, orgID, name string) (*models.ActionType, error)
	CreateActionType(ctx context.Context, orgID string, in ActionTypeInput, actorID string) (*models.ActionType, error)
	UpdateActionType(ctx context.Context, orgID, id string, in ActionTypeInput, actorID string) (*models.ActionType, error)
	DeleteActionType(ctx context.Context, orgID, id, actorID string) error

	ListMissionTypes(ctx context.Context, orgID string, includeInactive bool) ([]models.MissionType, error)
	GetMissionType(ctx context.Context, orgID, id string) (*models.MissionType, error)
	GetMissionTypesRequiring(ctx context.Context, orgID, actionTypeID string) ([]models.MissionType, error)
	CreateMissionType(ctx context.Context, orgID string, in MissionTypeInput, actorID string) (*models.MissionType, error)
	UpdateMissionType(ctx context.Context, orgID, id string, in MissionTypeInput, actorID string) (*models.MissionType, error)
	DeleteMissionType(ctx context.Context, orgID, id, actorID string) error

	ListRanks(ctx context.Context, orgID string, includeInactive bool) ([]models.RankConfiguration, error)
	GetEligibleRank(ctx context.Context, orgID string, points int) (*models.RankConfiguration, error)
	GetNextRank(ctx context.Context, orgID string, points int) (*models.RankConfiguration, error)
	CreateRank(ctx context.Context, orgID string, in RankInput, actorID string) (*models.RankConfiguration, error)
	UpdateRank(ctx context.Context, orgID, id string, in RankInput, actorID string) (*models.RankConfiguration, error)
	DeleteRank(ctx context.Context, orgID, id, actorID string) error

	// ApplyCatalog creates an organization with every rank, action type and mission in c.
	ApplyCatalog(ctx context.Context, c Catalog, actorID string) (*models.Organization, error)
}

type OrganizationServiceImpl struct {
	Repo            OrganizationRepository
	Events          event.Appender
	Tx              database.Transactor
	Logger          *zap.Logger
	Locks           *keylock.Locker
	Cache           CacheInvalidator
	MaxActionPoints int
	MaxBonusPoints  int
	WriteRetries    int
	Now             func() time.Time
}

func NewOrganizationService(
	repo OrganizationRepository,
	events event.Appender,
	tx database.Transactor,
	cache CacheInvalidator,
	logger *zap.Logger,
	cfg *config.Config,
) OrganizationService {
	return &OrganizationServiceImpl{
		Repo:            repo,
		Events:          events,
		Tx:              tx,
		Logger:          logger,
		Locks:           keylock.New(),
		Cache:           cache,
		MaxActionPoints: cfg.MaxActionPoints,
		MaxBonusPoints:  cfg.MaxBonusPoints,
		WriteRetries:    cfg.WriteRetries,
		Now:             time.Now,
	}
}

func (s *OrganizationServiceImpl) CreateOrganization(ctx context.Context, in OrganizationInput, actorID string) (*models.Organization, error) {
	org, err := s.newOrganization(ctx, in)
	if err != nil {
		return nil, err
	}
	created := s.configEvent(org, actorID, org.ID.Hex(), "Organization created: %s", org.Name)
	if err := s.insert(ctx, org, created); err != nil {
		return nil, err
	}

	s.Logger.Info("Organization created", zap.String("organizationId", org.ID.Hex()), zap.String("name", org.Name))
	return org, nil
}

// newOrganization validates in and builds an empty organization that is not stored yet.
func (s *OrganizationServiceImpl) newOrganization(ctx context.Context, in OrganizationInput) (*models.Organization, error) {
	if err := validateOrganization(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	federationID := strings.TrimSpace(in.FederationID)

	if _, err := s.Repo.FindByName(ctx, name); err == nil {
		return nil, errs.Conflict("Organization name already exists: %s", name)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Repo.FindByFederationID(ctx, federationID); err == nil {
		return nil, errs.Conflict("Federation ID already exists: %s", federationID)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := s.Now()
	org := &models.Organization{
		ID:                 primitive.NewObjectID(),
		Name:               name,
		FederationID:       federationID,
		Description:        in.Description,
		Active:             boolOr(in.Active, true),
		ActionTypes:        map[string]models.ActionType{},
		MissionTypes:       map[string]models.MissionType{},
		RankConfigurations: map[string]models.RankConfiguration{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return org, nil
}

func (s *OrganizationServiceImpl) insert(ctx context.Context, org *models.Organization, events ...models.Event) error {
	return s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, org); err != nil {
			return err
		}
		return s.Events.Append(ctx, events...)
	})
}

func (s *OrganizationServiceImpl) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *OrganizationServiceImpl) GetOrganizationByFederationID(ctx context.Context, federationID string) (*models.Organization, error) {
	return s.Repo.FindByFederationID(ctx, federationID)
}

func (s *OrganizationServiceImpl) ListOrganizations(ctx context.Context, activeOnly bool) ([]models.Organization, error) {
	return s.Repo.List(ctx, activeOnly)
}

func (s *OrganizationServiceImpl) UpdateOrganization(ctx context.Context, id string, in OrganizationInput, actorID string) (*models.Organization, error) {
	if err := validateOrganization(in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, actorID, func(org *models.Organization) (string, string, error) {
		org.Name = strings.TrimSpace(in.Name)
		org.FederationID = strings.TrimSpace(in.FederationID)
		org.Description = in.Description
		org.Active = boolOr(in.Active, org.Active)
		return org.ID.Hex(), "Organization updated: " + org.Name, nil
	})
}

// Action types

func (s *OrganizationServiceImpl) ListActionTypes(ctx context.Context, orgID string, includeInactive bool) ([]models.ActionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !includeInactive {
		return org.ActiveActionTypes(), nil
	}
	out := make([]models.ActionType, 0, len(org.ActionTypes))
	for _, at := range org.ActionTypes {
		out = append(out, at)
	}
	sortByName(out, func(a models.ActionType) string { return a.Name })
	return out, nil
}

func (s *OrganizationServiceImpl) GetActionType(ctx context.Context, orgID, id string) (*models.ActionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	at, ok := org.ActionType(id)
	if !ok {
		return nil, errs.NotFound("Action type not found: %s", id)
	}
	return &at, nil
}

func (s *OrganizationServiceImpl) GetActionTypeByName(ctx context.Context, orgID, name string) (*models.ActionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	at, ok := org.ActionTypeByName(name)
	if !ok {
		return nil, errs.NotFound("Action type not found: %s", name)
	}
	return &at, nil
}

func (s *OrganizationServiceImpl) CreateActionType(ctx context.Context, orgID string, in ActionTypeInput, actorID string) (*models.ActionType, error) {
	if err := s.validateActionType(in); err != nil {
		return nil, err
	}

	var created models.ActionType
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		var err error
		created, err = s.addActionType(org, in)
		if err != nil {
			return "", "", err
		}
		return created.ID, "Action type created: " + created.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *OrganizationServiceImpl) addActionType(org *models.Organization, in ActionTypeInput) (models.ActionType, error) {
	if err := checkActionTypeName(org, "", in.Name); err != nil {
		return models.ActionType{}, err
	}
	at := models.ActionType{
		ID:        uuid.NewString(),
		CreatedAt: s.Now(),
	}
	applyActionType(&at, in, true)
	org.ActionTypes[at.ID] = at
	return at, nil
}

func (s *OrganizationServiceImpl) UpdateActionType(ctx context.Context, orgID, id string, in ActionTypeInput, actorID string) (*models.ActionType, error) {
	if err := s.validateActionType(in); err != nil {
		return nil, err
	}

	var updated models.ActionType
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		at, ok := org.ActionType(id)
		if !ok {
			return "", "", errs.NotFound("Action type not found: %s", id)
		}
		if err := checkActionTypeName(org, id, in.Name); err != nil {
			return "", "", err
		}
		applyActionType(&at, in, at.Active)
		org.ActionTypes[id] = at
		updated = at
		return id, "Action type updated: " + at.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrganizationServiceImpl) DeleteActionType(ctx context.Context, orgID, id, actorID string) error {
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		at, ok := org.ActionType(id)
		if !ok {
			return "", "", errs.NotFound("Action type not found: %s", id)
		}
		at.Active = false
		org.ActionTypes[id] = at
		return id, "Action type deactivated: " + at.Name, nil
	})
	return err
}

// Mission types

func (s *OrganizationServiceImpl) ListMissionTypes(ctx context.Context, orgID string, includeInactive bool) ([]models.MissionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !includeInactive {
		return org.ActiveMissionTypes(), nil
	}
	out := make([]models.MissionType, 0, len(org.MissionTypes))
	for _, mt := range org.MissionTypes {
		out = append(out, mt)
	}
	sortByName(out, func(m models.MissionType) string { return m.Name })
	return out, nil
}

func (s *OrganizationServiceImpl) GetMissionType(ctx context.Context, orgID, id string) (*models.MissionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	mt, ok := org.MissionType(id)
	if !ok {
		return nil, errs.NotFound("Mission type not found: %s", id)
	}
	return &mt, nil
}

func (s *OrganizationServiceImpl) GetMissionTypesRequiring(ctx context.Context, orgID, actionTypeID string) ([]models.MissionType, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return org.MissionTypesRequiring(actionTypeID), nil
}

func (s *OrganizationServiceImpl) CreateMissionType(ctx context.Context, orgID string, in MissionTypeInput, actorID string) (*models.MissionType, error) {
	var created models.MissionType
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		var err error
		created, err = s.addMissionType(org, in)
		if err != nil {
			return "", "", err
		}
		return created.ID, "Mission type created: " + created.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *OrganizationServiceImpl) addMissionType(org *models.Organization, in MissionTypeInput) (models.MissionType, error) {
	if err := s.validateMissionType(org, &in); err != nil {
		return models.MissionType{}, err
	}
	if err := checkMissionTypeName(org, "", in.Name); err != nil {
		return models.MissionType{}, err
	}
	mt := models.MissionType{
		ID:        uuid.NewString(),
		CreatedAt: s.Now(),
	}
	applyMissionType(&mt, in, true)
	org.MissionTypes[mt.ID] = mt
	return mt, nil
}

func (s *OrganizationServiceImpl) UpdateMissionType(ctx context.Context, orgID, id string, in MissionTypeInput, actorID string) (*models.MissionType, error) {
	var updated models.MissionType
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		mt, ok := org.MissionType(id)
		if !ok {
			return "", "", errs.NotFound("Mission type not found: %s", id)
		}
		if err := s.validateMissionType(org, &in); err != nil {
			return "", "", err
		}
		if err := checkMissionTypeName(org, id, in.Name); err != nil {
			return "", "", err
		}
		applyMissionType(&mt, in, mt.Active)
		org.MissionTypes[id] = mt
		updated = mt
		return id, "Mission type updated: " + mt.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrganizationServiceImpl) DeleteMissionType(ctx context.Context, orgID, id, actorID string) error {
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		mt, ok := org.MissionType(id)
		if !ok {
			return "", "", errs.NotFound("Mission type not found: %s", id)
		}
		mt.Active = false
		org.MissionTypes[id] = mt
		return id, "Mission type deactivated: " + mt.Name, nil
	})
	return err
}

// Ranks

func (s *OrganizationServiceImpl) ListRanks(ctx context.Context, orgID string, includeInactive bool) ([]models.RankConfiguration, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !includeInactive {
		return org.ActiveRanks(), nil
	}
	out := make([]models.RankConfiguration, 0, len(org.RankConfigurations))
	for _, rc := range org.RankConfigurations {
		out = append(out, rc)
	}
	sortByName(out, func(r models.RankConfiguration) string { return fmt.Sprintf("%012d", r.PointsThreshold) })
	return out, nil
}

func (s *OrganizationServiceImpl) GetEligibleRank(ctx context.Context, orgID string, points int) (*models.RankConfiguration, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return org.EligibleRank(points), nil
}

func (s *OrganizationServiceImpl) GetNextRank(ctx context.Context, orgID string, points int) (*models.RankConfiguration, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return org.NextRank(points), nil
}

func (s *OrganizationServiceImpl) CreateRank(ctx context.Context, orgID string, in RankInput, actorID string) (*models.RankConfiguration, error) {
	if err := validateRank(in); err != nil {
		return nil, err
	}

	var created models.RankConfiguration
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		var err error
		created, err = s.addRank(org, in)
		if err != nil {
			return "", "", err
		}
		return created.ID, "Rank created: " + created.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *OrganizationServiceImpl) addRank(org *models.Organization, in RankInput) (models.RankConfiguration, error) {
	if err := checkRankThreshold(org, "", in.PointsThreshold); err != nil {
		return models.RankConfiguration{}, err
	}
	rc := models.RankConfiguration{
		ID:        uuid.NewString(),
		CreatedAt: s.Now(),
	}
	applyRank(&rc, in, true)
	org.RankConfigurations[rc.ID] = rc
	return rc, nil
}

func (s *OrganizationServiceImpl) UpdateRank(ctx context.Context, orgID, id string, in RankInput, actorID string) (*models.RankConfiguration, error) {
	if err := validateRank(in); err != nil {
		return nil, err
	}

	var updated models.RankConfiguration
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		rc, ok := org.RankConfiguration(id)
		if !ok {
			return "", "", errs.NotFound("Rank not found: %s", id)
		}
		if err := checkRankThreshold(org, id, in.PointsThreshold); err != nil {
			return "", "", err
		}
		applyRank(&rc, in, rc.Active)
		org.RankConfigurations[id] = rc
		updated = rc
		return id, "Rank updated: " + rc.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrganizationServiceImpl) DeleteRank(ctx context.Context, orgID, id, actorID string) error {
	_, err := s.mutate(ctx, orgID, actorID, func(org *models.Organization) (string, string, error) {
		rc, ok := org.RankConfiguration(id)
		if !ok {
			return "", "", errs.NotFound("Rank not found: %s", id)
		}
		rc.Active = false
		org.RankConfigurations[id] = rc
		return id, "Rank deactivated: " + rc.Name, nil
	})
	return err
}

// ApplyCatalog builds the whole organization in memory and stores it with its
// events in one write, so a catalog with a bad entry leaves nothing behind.
func (s *OrganizationServiceImpl) ApplyCatalog(ctx context.Context, c Catalog, actorID string) (*models.Organization, error) {
	org, err := s.newOrganization(ctx, c.Organization)
	if err != nil {
		return nil, err
	}
	events := []models.Event{s.configEvent(org, actorID, org.ID.Hex(), "Organization created: %s", org.Name)}

	for _, in := range c.Ranks {
		if err := validateRank(in); err != nil {
			return nil, fmt.Errorf("rank %q: %w", in.Name, err)
		}
		rc, err := s.addRank(org, in)
		if err != nil {
			return nil, fmt.Errorf("rank %q: %w", in.Name, err)
		}
		events = append(events, s.configEvent(org, actorID, rc.ID, "Rank created: %s", rc.Name))
	}
	for _, in := range c.ActionTypes {
		if err := s.validateActionType(in); err != nil {
			return nil, fmt.Errorf("action type %q: %w", in.Name, err)
		}
		at, err := s.addActionType(org, in)
		if err != nil {
			return nil, fmt.Errorf("action type %q: %w", in.Name, err)
		}
		events = append(events, s.configEvent(org, actorID, at.ID, "Action type created: %s", at.Name))
	}
	for _, in := range c.MissionTypes {
		mt, err := s.addMissionType(org, in)
		if err != nil {
			return nil, fmt.Errorf("mission type %q: %w", in.Name, err)
		}
		events = append(events, s.configEvent(org, actorID, mt.ID, "Mission type created: %s", mt.Name))
	}

	if err := s.insert(ctx, org, events...); err != nil {
		return nil, err
	}
	s.Logger.Info("Catalog applied",
		zap.String("organizationId", org.ID.Hex()),
		zap.Int("ranks", len(org.RankConfigurations)),
		zap.Int("actionTypes", len(org.ActionTypes)),
		zap.Int("missionTypes", len(org.MissionTypes)))
	return org, nil
}

// mutate serializes catalog edits of one organization. The in-process lock keeps
// local writers in line; the version check on Update catches writers in other processes.
// fn returns the id and message of the CONFIGURATION_CHANGED event to record.
func (s *OrganizationServiceImpl) mutate(
	ctx context.Context,
	orgID, actorID string,
	fn func(org *models.Organization) (refID, message string, err error),
) (*models.Organization, error) {
	unlock := s.Locks.Lock(orgID)
	defer unlock()

	retries := s.WriteRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		var result *models.Organization
		err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			org, err := s.Repo.FindByID(ctx, orgID)
			if err != nil {
				return err
			}
			refID, message, err := fn(org)
			if err != nil {
				return err
			}
			org.UpdatedAt = s.Now()
			if err := s.Repo.Update(ctx, org); err != nil {
				return err
			}
			result = org
			return s.Events.Append(ctx, s.configEvent(org, actorID, refID, "%s", message))
		})
		if errors.Is(err, errs.ErrVersionConflict) {
			s.Logger.Debug("Catalog update lost a race, retrying",
				zap.String("organizationId", orgID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		if s.Cache != nil {
			s.Cache.Invalidate(orgID)
		}
		return result, nil
	}
	return nil, errs.Conflict("Organization %s is being modified concurrently, try again", orgID)
}

func (s *OrganizationServiceImpl) configEvent(org *models.Organization, actorID, refID, format string, args ...any) models.Event {
	return models.Event{
		ID:             primitive.NewObjectID(),
		OrganizationID: org.ID,
		UserID:         actorID,
		Type:           models.EventConfigurationChanged,
		Message:        fmt.Sprintf(format, args...),
		RefID:          refID,
		Timestamp:      s.Now(),
	}
}
