package event

import "go-gamifier/internal/common/models"

type EventPage struct {
	Events []models.Event `json:"events"`
	Total  int64          `json:"total"`
	Page   int64          `json:"page"`
	Limit  int64          `json:"limit"`
}

type EventStatistics struct {
	TotalEvents     int64                      `json:"total_events"`
	TodayEvents     int64                      `json:"today_events"`
	WeekEvents      int64                      `json:"week_events"`
	MonthEvents     int64                      `json:"month_events"`
	EventTypeCounts map[models.EventType]int64 `json:"event_type_counts"`
}
