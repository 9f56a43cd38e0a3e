package dashboard

import (
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/scoring"
)

// Dashboard is the personal overview shown to a user after login.
type Dashboard struct {
	User         *models.User             `json:"user"`
	Rank         *scoring.RankInfo        `json:"rank"`
	Position     int64                    `json:"position"`
	TotalUsers   int64                    `json:"total_users"`
	Missions     []scoring.MissionSummary `json:"missions"`
	Badges       []scoring.Badge          `json:"badges"`
	RecentEvents []models.Event           `json:"recent_events"`
}
