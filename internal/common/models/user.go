package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                primitive.ObjectID          `bson:"_id,omitempty" json:"id"`
	OrganizationID    primitive.ObjectID          `bson:"organization_id" json:"organization_id"`
	EmployeeID        string                      `bson:"employee_id" json:"employee_id"`
	Name              string                      `bson:"name" json:"name"`
	Surname           string                      `bson:"surname" json:"surname"`
	ManagerEmployeeID string                      `bson:"manager_employee_id,omitempty" json:"manager_employee_id,omitempty"`
	Department        string                      `bson:"department,omitempty" json:"department,omitempty"`
	Role              Role                        `bson:"role" json:"role"`
	TotalPoints       int                         `bson:"total_points" json:"total_points"`
	CurrentRankID     *string                     `bson:"current_rank_id,omitempty" json:"current_rank_id,omitempty"`
	MissionProgress   map[string]*MissionProgress `bson:"mission_progress" json:"mission_progress"`
	ProgressVersion   int64                       `bson:"progress_version" json:"-"`
	LastLoginAt       *time.Time                  `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	PreviousLoginAt   *time.Time                  `bson:"previous_login_at,omitempty" json:"previous_login_at,omitempty"`
	CreatedAt         time.Time                   `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time                   `bson:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDirectManagerOf reports whether u manages sub directly inside the same organization.
func (u *User) IsDirectManagerOf(sub *User) bool {
	return u.OrganizationID == sub.OrganizationID &&
		sub.ManagerEmployeeID != "" &&
		sub.ManagerEmployeeID == u.EmployeeID
}

// Progress returns the progress record for a mission, or nil when the user never touched it.
func (u *User) Progress(missionID string) *MissionProgress {
	if u.MissionProgress == nil {
		return nil
	}
	return u.MissionProgress[missionID]
}

type MissionProgress struct {
	MissionTypeID          string     `bson:"mission_type_id" json:"mission_type_id"`
	CompletedActionTypeIDs []string   `bson:"completed_action_type_ids" json:"completed_action_type_ids"`
	Completed              bool       `bson:"completed" json:"completed"`
	CompletionDate         *time.Time `bson:"completion_date,omitempty" json:"completion_date,omitempty"`
}

func (p *MissionProgress) HasCompleted(actionTypeID string) bool {
	for _, id := range p.CompletedActionTypeIDs {
		if id == actionTypeID {
			return true
		}
	}
	return false
}

// Covers reports whether every id in required has been completed.
func (p *MissionProgress) Covers(required []string) bool {
	for _, id := range required {
		if !p.HasCompleted(id) {
			return false
		}
	}
	return true
}
