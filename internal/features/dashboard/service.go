package dashboard

import (
	"context"

	"go-gamifier/internal/features/event"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/scoring"
	"go-gamifier/internal/features/user"
)

const recentEventCount = 10

type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (*Dashboard, error)
}

type DashboardServiceImpl struct {
	Users       user.UserService
	Scoring     scoring.ScoringService
	Leaderboard leaderboard.LeaderboardService
	Events      event.EventService
}

func NewDashboardService(
	users user.UserService,
	scoringService scoring.ScoringService,
	board leaderboard.LeaderboardService,
	events event.EventService,
) DashboardService {
	return &DashboardServiceImpl{
		Users:       users,
		Scoring:     scoringService,
		Leaderboard: board,
		Events:      events,
	}
}

func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank, err := s.Scoring.RankInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.Scoring.MissionProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.Scoring.Badges(ctx, userID)
	if err != nil {
		return nil, err
	}
	position, err := s.Leaderboard.UserPosition(ctx, u.OrganizationID.Hex(), userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Events.UserEvents(ctx, userID, nil, 1, recentEventCount)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:         u,
		Rank:         rank,
		Position:     position.Position,
		TotalUsers:   position.TotalUsers,
		Missions:     missions,
		Badges:       badges,
		RecentEvents: recent.Events,
	}, nil
}
