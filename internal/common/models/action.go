package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActionStatus string

const (
	ActionPendingApproval ActionStatus = "PENDING_APPROVAL"
	ActionApproved        ActionStatus = "APPROVED"
	ActionRejected        ActionStatus = "REJECTED"
)

type Action struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID  primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ActionTypeID    string             `bson:"action_type_id" json:"action_type_id"`
	ActionDate      time.Time          `bson:"action_date" json:"action_date"`
	CaptureMethod   CaptureMethod      `bson:"capture_method" json:"capture_method"`
	ReporterID      string             `bson:"reporter_id" json:"reporter_id"`
	ReporterRole    ReporterRole       `bson:"reporter_role" json:"reporter_role"`
	Status          ActionStatus       `bson:"status" json:"status"`
	Evidence        string             `bson:"evidence,omitempty" json:"evidence,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ApproverID      string             `bson:"approver_id,omitempty" json:"approver_id,omitempty"`
	ApprovalNotes   string             `bson:"approval_notes,omitempty" json:"approval_notes,omitempty"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time         `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedAt      *time.Time         `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// ActionFilter narrows action counts and listings. Zero values are ignored.
type ActionFilter struct {
	OrganizationID string
	UserIDs        []string
	Status         ActionStatus
	CreatedSince   *time.Time
}
