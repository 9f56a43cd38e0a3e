package action

import (
	"time"

	"go-gamifier/internal/common/models"
)

type CaptureRequest struct {
	OrganizationID string               `json:"organization_id"`
	UserID         string               `json:"user_id"`
	ActionTypeID   string               `json:"action_type_id"`
	Date           time.Time            `json:"action_date"`
	Method         models.CaptureMethod `json:"capture_method"`
	ReporterID     string               `json:"reporter_id"`
	Evidence       string               `json:"evidence"`
	Notes          string               `json:"notes"`
}

type CaptureInput struct {
	UserID       string `json:"user_id"`
	ActionTypeID string `json:"action_type_id"`
	// ActionDate is YYYY-MM-DD; empty means today.
	ActionDate string `json:"action_date"`
	Evidence   string `json:"evidence"`
	Notes      string `json:"notes"`
}

type ReviewInput struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type ActionPage struct {
	Actions []models.Action `json:"actions"`
	Total   int64           `json:"total"`
	Page    int64           `json:"page"`
	Limit   int64           `json:"limit"`
}

type ActionStatistics struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Today     int64 `json:"today"`
	LastWeek  int64 `json:"last_7_days"`
	LastMonth int64 `json:"last_30_days"`
}

// Columns of an action import file. Evidence and notes are optional.
var importHeaders = []string{"employee_id", "action_type", "date"}
