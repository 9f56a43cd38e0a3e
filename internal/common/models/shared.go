package models

import (
	"time"
)

type ContextKey string

const (
	OrganizationIDKey ContextKey = "organization_id"
)

// SystemReporterID identifies captures that were not submitted by a person (imports).
const SystemReporterID = "system"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Log struct {
	Message        string    `bson:"message" json:"message"`
	Caller         string    `bson:"caller,omitempty" json:"caller,omitempty"`
	IpAddress      string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	OrganizationID string    `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	UserID         string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	LogLevelId     int       `bson:"log_level_id" json:"log_level_id"`
	AppId          string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc   time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

// Day truncates t to the UTC calendar day it falls on.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
