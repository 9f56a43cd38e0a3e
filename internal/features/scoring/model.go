package scoring

import (
	"time"

	"go-gamifier/internal/common/models"
)

type RankInfo struct {
	UserID           string                    `json:"user_id"`
	TotalPoints      int                       `json:"total_points"`
	CurrentRank      *models.RankConfiguration `json:"current_rank,omitempty"`
	NextRank         *models.RankConfiguration `json:"next_rank,omitempty"`
	PointsToNextRank int                       `json:"points_to_next_rank"`
}

type MissionSummary struct {
	MissionTypeID  string     `json:"mission_type_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Badge          string     `json:"badge"`
	Category       string     `json:"category,omitempty"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	BonusPoints    int        `json:"bonus_points"`
}

type MissionActionProgress struct {
	ActionTypeID string `json:"action_type_id"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	Completed    bool   `json:"completed"`
}

type MissionDetail struct {
	MissionSummary
	Actions []MissionActionProgress `json:"actions"`
}

type Badge struct {
	MissionTypeID string     `json:"mission_type_id"`
	MissionName   string     `json:"mission_name"`
	Badge         string     `json:"badge"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
}

type AwardRequest struct {
	UserID string `json:"user_id"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}
