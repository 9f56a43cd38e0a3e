package snapshot

import (
	"time"

	"go-gamifier/internal/features/leaderboard"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot freezes the monthly leaderboard of one organization.
type Snapshot struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	Month          string              `bson:"month" json:"month"` // YYYY-MM
	Entries        []leaderboard.Entry `bson:"entries" json:"entries"`
	TakenAt        time.Time           `bson:"taken_at" json:"taken_at"`
	ExportedAt     *time.Time          `bson:"exported_at,omitempty" json:"exported_at,omitempty"`
}

type TakeRequest struct {
	Month string `json:"month"`
}

const monthLayout = "2006-01"
