package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/event"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/scoring"
	"go-gamifier/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockUsers struct {
	user.UserService
	u *models.User
}

func (m *MockUsers) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.u == nil || m.u.ID.Hex() != id {
		return nil, errs.NotFound("User not found: %s", id)
	}
	return m.u, nil
}

type MockScoring struct {
	scoring.ScoringService
}

func (m *MockScoring) RankInfo(ctx context.Context, userID string) (*scoring.RankInfo, error) {
	return &scoring.RankInfo{UserID: userID, TotalPoints: 350, PointsToNextRank: 250}, nil
}

func (m *MockScoring) MissionProgress(ctx context.Context, userID string) ([]scoring.MissionSummary, error) {
	return []scoring.MissionSummary{{MissionTypeID: "m", Name: "Explorer"}}, nil
}

func (m *MockScoring) Badges(ctx context.Context, userID string) ([]scoring.Badge, error) {
	return []scoring.Badge{{MissionTypeID: "m", Badge: "🌌"}}, nil
}

type MockBoard struct {
	leaderboard.LeaderboardService
}

func (m *MockBoard) UserPosition(ctx context.Context, organizationID, userID string) (*leaderboard.UserPosition, error) {
	return &leaderboard.UserPosition{UserID: userID, Position: 3, TotalUsers: 12}, nil
}

type MockEvents struct {
	event.EventService
	limit int64
}

func (m *MockEvents) UserEvents(ctx context.Context, userID string, since *time.Time, page, limit int64) (*event.EventPage, error) {
	m.limit = limit
	return &event.EventPage{Events: []models.Event{{UserID: userID, Type: models.EventRankPromoted}}, Total: 1}, nil
}

func TestGetDashboard(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), OrganizationID: primitive.NewObjectID(), EmployeeID: "E1"}
	events := &MockEvents{}
	svc := &DashboardServiceImpl{
		Users:       &MockUsers{u: u},
		Scoring:     &MockScoring{},
		Leaderboard: &MockBoard{},
		Events:      events,
	}

	d, err := svc.GetDashboard(context.Background(), u.ID.Hex())
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.Rank.TotalPoints != 350 || d.Position != 3 || d.TotalUsers != 12 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if len(d.Missions) != 1 || len(d.Badges) != 1 || len(d.RecentEvents) != 1 {
		t.Errorf("missing sections: %+v", d)
	}
	if events.limit != recentEventCount {
		t.Errorf("expected %d recent events requested, got %d", recentEventCount, events.limit)
	}

	if _, err := svc.GetDashboard(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown user: expected not found, got %v", err)
	}
}
