package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/internal/features/leaderboard"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const pageSize = 100

type OrganizationLister interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	List(ctx context.Context, activeOnly bool) ([]models.Organization, error)
}

type SnapshotService interface {
	// Take stores the monthly leaderboard of month (YYYY-MM) and exports it when a
	// warehouse is configured. Taking a month again replaces the earlier snapshot.
	Take(ctx context.Context, organizationID, month string) (*Snapshot, error)
	// TakeAll snapshots month for every active organization. Failures are logged per organization.
	TakeAll(ctx context.Context, month string) (int, error)
	Get(ctx context.Context, organizationID, month string) (*Snapshot, error)
	List(ctx context.Context, organizationID string) ([]Snapshot, error)

	StartScheduler() error
	StopScheduler()
}

type SnapshotServiceImpl struct {
	Repo        SnapshotRepository
	Orgs        OrganizationLister
	Leaderboard leaderboard.LeaderboardService
	Warehouse   Warehouse
	Logger      *zap.Logger
	Schedule    string
	Now         func() time.Time

	mu        sync.Mutex
	scheduler *cron.Cron
}

func NewSnapshotService(
	repo SnapshotRepository,
	orgs OrganizationLister,
	board leaderboard.LeaderboardService,
	warehouse Warehouse,
	logger *zap.Logger,
	cfg *config.Config,
) SnapshotService {
	return &SnapshotServiceImpl{
		Repo:        repo,
		Orgs:        orgs,
		Leaderboard: board,
		Warehouse:   warehouse,
		Logger:      logger,
		Schedule:    cfg.SnapshotSchedule,
		Now:         time.Now,
	}
}

func (s *SnapshotServiceImpl) Take(ctx context.Context, organizationID, month string) (*Snapshot, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, errs.Validation("Invalid month: %s", month)
	}
	if start.After(s.Now().UTC()) {
		return nil, errs.Validation("Cannot snapshot a future month: %s", month)
	}
	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	entries := []leaderboard.Entry{}
	for page := int64(1); ; page++ {
		res, err := s.Leaderboard.Monthly(ctx, organizationID, start, page, pageSize)
		if err != nil {
			return nil, err
		}
		entries = append(entries, res.Entries...)
		if int64(len(entries)) >= res.Total || len(res.Entries) == 0 {
			break
		}
	}

	snap := &Snapshot{
		OrganizationID: org.ID,
		Month:          month,
		Entries:        entries,
		TakenAt:        s.Now(),
	}
	if err := s.Repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	s.Logger.Info("Leaderboard snapshot stored",
		zap.String("organizationId", organizationID),
		zap.String("month", month),
		zap.Int("entries", len(entries)))

	if s.Warehouse != nil {
		if err := s.Warehouse.Export(ctx, snap); err != nil {
			return nil, fmt.Errorf("snapshot stored but export failed: %w", err)
		}
		if err := s.Repo.MarkExported(ctx, snap, s.Now()); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *SnapshotServiceImpl) TakeAll(ctx context.Context, month string) (int, error) {
	orgs, err := s.Orgs.List(ctx, true)
	if err != nil {
		return 0, err
	}
	taken := 0
	for _, org := range orgs {
		if _, err := s.Take(ctx, org.ID.Hex(), month); err != nil {
			s.Logger.Error("Leaderboard snapshot failed",
				zap.String("organizationId", org.ID.Hex()),
				zap.String("month", month),
				zap.Error(err))
			continue
		}
		taken++
	}
	return taken, nil
}

func (s *SnapshotServiceImpl) Get(ctx context.Context, organizationID, month string) (*Snapshot, error) {
	return s.Repo.Find(ctx, organizationID, month)
}

func (s *SnapshotServiceImpl) List(ctx context.Context, organizationID string) ([]Snapshot, error) {
	return s.Repo.List(ctx, organizationID)
}

// StartScheduler snapshots the month that just ended on every tick of the configured
// schedule. An empty schedule disables it.
func (s *SnapshotServiceImpl) StartScheduler() error {
	if s.Schedule == "" {
		s.Logger.Info("Snapshot schedule not configured")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.Schedule, func() {
		month := PreviousMonth(s.Now())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		n, err := s.TakeAll(ctx, month)
		if err != nil {
			s.Logger.Error("Scheduled snapshot failed", zap.String("month", month), zap.Error(err))
			return
		}
		s.Logger.Info("Scheduled snapshot finished", zap.String("month", month), zap.Int("organizations", n))
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.Schedule, err)
	}
	s.scheduler.Start()
	s.Logger.Info("Snapshot scheduler started", zap.String("schedule", s.Schedule))
	return nil
}

func (s *SnapshotServiceImpl) StopScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
		s.scheduler = nil
	}
}

// PreviousMonth returns the calendar month before t as YYYY-MM (UTC).
func PreviousMonth(t time.Time) string {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format(monthLayout)
}
