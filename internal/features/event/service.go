package event

import (
	"context"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
)

const defaultFeedWindow = 7 * 24 * time.Hour

var allEventTypes = []models.EventType{
	models.EventUserRegistered,
	models.EventActionCaptured,
	models.EventActionApproved,
	models.EventActionRejected,
	models.EventMissionCompleted,
	models.EventRankPromoted,
	models.EventPointsAwarded,
	models.EventConfigurationChanged,
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Publisher receives events after the unit of work that produced them committed.
type Publisher interface {
	Publish(events []models.Event)
}

type EventService interface {
	Publisher
	UserEvents(ctx context.Context, userID string, since *time.Time, page, limit int64) (*EventPage, error)
	Feed(ctx context.Context, userID string, page, limit int64) (*EventPage, error)
	Query(ctx context.Context, filter models.EventFilter, page, limit int64) (*EventPage, error)
	Statistics(ctx context.Context, organizationID string) (*EventStatistics, error)
	Subscribe(organizationID string) (<-chan models.Event, func())
}

type EventServiceImpl struct {
	Repo     EventRepository
	UserRepo UserFinder
	Hub      *Hub
	Now      func() time.Time
}

func NewEventService(repo EventRepository, userRepo UserFinder, hub *Hub) EventService {
	return &EventServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		Hub:      hub,
		Now:      time.Now,
	}
}

func (s *EventServiceImpl) Publish(events []models.Event) {
	if s.Hub != nil {
		s.Hub.Publish(events)
	}
}

func (s *EventServiceImpl) Subscribe(organizationID string) (<-chan models.Event, func()) {
	return s.Hub.Subscribe(organizationID)
}

func (s *EventServiceImpl) UserEvents(ctx context.Context, userID string, since *time.Time, page, limit int64) (*EventPage, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, models.EventFilter{
		OrganizationID: user.OrganizationID.Hex(),
		UserID:         userID,
		Since:          since,
	}, page, limit)
}

// Feed lists organization-wide events since the user's previous login,
// falling back to the last seven days.
func (s *EventServiceImpl) Feed(ctx context.Context, userID string, page, limit int64) (*EventPage, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := s.Now().Add(-defaultFeedWindow)
	if user.PreviousLoginAt != nil {
		since = *user.PreviousLoginAt
	}
	return s.Query(ctx, models.EventFilter{
		OrganizationID: user.OrganizationID.Hex(),
		Since:          &since,
	}, page, limit)
}

func (s *EventServiceImpl) Query(ctx context.Context, filter models.EventFilter, page, limit int64) (*EventPage, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, errs.Validation("Unknown event type: %s", filter.Type)
	}
	if filter.Since != nil && filter.Until != nil && !filter.Since.Before(*filter.Until) {
		return nil, errs.Validation("since must be before until")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	events, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &EventPage{Events: events, Total: total, Page: page, Limit: limit}, nil
}

func (s *EventServiceImpl) Statistics(ctx context.Context, organizationID string) (*EventStatistics, error) {
	now := s.Now()
	today := models.Day(now)
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	stats := &EventStatistics{EventTypeCounts: make(map[models.EventType]int64)}

	var err error
	base := models.EventFilter{OrganizationID: organizationID}
	if stats.TotalEvents, err = s.Repo.Count(ctx, base); err != nil {
		return nil, err
	}

	windows := []struct {
		since time.Time
		dst   *int64
	}{
		{today, &stats.TodayEvents},
		{week, &stats.WeekEvents},
		{month, &stats.MonthEvents},
	}
	for _, w := range windows {
		f := base
		since := w.since
		f.Since = &since
		if *w.dst, err = s.Repo.Count(ctx, f); err != nil {
			return nil, err
		}
	}

	for _, t := range allEventTypes {
		f := base
		f.Type = t
		n, err := s.Repo.Count(ctx, f)
		if err != nil {
			return nil, err
		}
		stats.EventTypeCounts[t] = n
	}
	return stats, nil
}
