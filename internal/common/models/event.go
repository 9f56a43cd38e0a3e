package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventUserRegistered       EventType = "USER_REGISTERED"
	EventActionCaptured       EventType = "ACTION_CAPTURED"
	EventActionApproved       EventType = "ACTION_APPROVED"
	EventActionRejected       EventType = "ACTION_REJECTED"
	EventMissionCompleted     EventType = "MISSION_COMPLETED"
	EventRankPromoted         EventType = "RANK_PROMOTED"
	EventPointsAwarded        EventType = "POINTS_AWARDED"
	EventConfigurationChanged EventType = "CONFIGURATION_CHANGED"
)

func (t EventType) Valid() bool {
	switch t {
	case EventUserRegistered, EventActionCaptured, EventActionApproved, EventActionRejected,
		EventMissionCompleted, EventRankPromoted, EventPointsAwarded, EventConfigurationChanged:
		return true
	}
	return false
}

type Event struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	UserID         string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Type           EventType          `bson:"event_type" json:"event_type"`
	Message        string             `bson:"message" json:"message"`
	Points         int                `bson:"points,omitempty" json:"points,omitempty"`
	Reason         string             `bson:"reason,omitempty" json:"reason,omitempty"`
	RefID          string             `bson:"ref_id,omitempty" json:"ref_id,omitempty"` // action, mission, rank or catalog entry id
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// EventFilter narrows event queries. Zero values are ignored.
type EventFilter struct {
	OrganizationID string
	UserID         string
	Type           EventType
	Since          *time.Time
	Until          *time.Time
}
