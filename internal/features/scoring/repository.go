package scoring

import (
	"context"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProgressRepository is the only writer of a user's points, rank and mission progress.
type ProgressRepository interface {
	// SaveProgress writes the progress section if the stored progress_version still
	// equals u.ProgressVersion, then bumps u.ProgressVersion. A lost race yields
	// errs.ErrVersionConflict.
	SaveProgress(ctx context.Context, u *models.User) error
}

type ProgressRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewProgressRepository(mongodb *database.MongodbDB) ProgressRepository {
	return &ProgressRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *ProgressRepositoryImpl) SaveProgress(ctx context.Context, u *models.User) error {
	filter := bson.M{"_id": u.ID, "progress_version": u.ProgressVersion}
	update := bson.M{
		"$set": bson.M{
			"total_points":     u.TotalPoints,
			"current_rank_id":  u.CurrentRankID,
			"mission_progress": u.MissionProgress,
			"updated_at":       u.UpdatedAt,
		},
		"$inc": bson.M{"progress_version": 1},
	}

	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrVersionConflict
	}
	u.ProgressVersion++
	return nil
}
