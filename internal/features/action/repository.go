package action

import (
	"context"
	"errors"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActionRepository interface {
	// Create fails with Conflict when the user already has an action of the same type on the same day.
	Create(ctx context.Context, a *models.Action) error
	FindByID(ctx context.Context, id string) (*models.Action, error)
	Exists(ctx context.Context, organizationID, userID primitive.ObjectID, actionTypeID string, day time.Time) (bool, error)
	// Transition writes the review fields of a only while the stored status is still from.
	// Otherwise it fails with InvalidState.
	Transition(ctx context.Context, a *models.Action, from models.ActionStatus) error
	ListByUser(ctx context.Context, userID string, limit, offset int64) ([]models.Action, int64, error)
	ListPending(ctx context.Context, organizationID string, userIDs []string) ([]models.Action, error)
	Count(ctx context.Context, filter models.ActionFilter) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type ActionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewActionRepository(mongodb *database.MongodbDB) ActionRepository {
	return &ActionRepositoryImpl{
		Collection: mongodb.DB.Collection("actions"),
	}
}

func (r *ActionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "action_type_id", Value: 1},
				{Key: "action_date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "action_date", Value: -1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *ActionRepositoryImpl) Create(ctx context.Context, a *models.Action) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("Action already recorded for %s", a.ActionDate.Format(time.DateOnly))
	}
	return err
}

func (r *ActionRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Action, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.NotFound("Action not found: %s", id)
	}
	var a models.Action
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("Action not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActionRepositoryImpl) Exists(ctx context.Context, organizationID, userID primitive.ObjectID, actionTypeID string, day time.Time) (bool, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{
		"organization_id": organizationID,
		"user_id":         userID,
		"action_type_id":  actionTypeID,
		"action_date":     day,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *ActionRepositoryImpl) Transition(ctx context.Context, a *models.Action, from models.ActionStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":           a.Status,
			"approver_id":      a.ApproverID,
			"approval_notes":   a.ApprovalNotes,
			"rejection_reason": a.RejectionReason,
			"approved_at":      a.ApprovedAt,
			"rejected_at":      a.RejectedAt,
			"updated_at":       a.UpdatedAt,
		},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": a.ID, "status": from}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.InvalidState("Action is not %s: %s", from, a.ID.Hex())
	}
	return nil
}

func (r *ActionRepositoryImpl) ListByUser(ctx context.Context, userID string, limit, offset int64) ([]models.Action, int64, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Action{}, 0, nil
	}
	filter := bson.M{"user_id": objectID}

	opts := options.Find().SetSort(bson.D{{Key: "action_date", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	actions, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

func (r *ActionRepositoryImpl) ListPending(ctx context.Context, organizationID string, userIDs []string) ([]models.Action, error) {
	filter := buildQuery(models.ActionFilter{
		OrganizationID: organizationID,
		UserIDs:        userIDs,
		Status:         models.ActionPendingApproval,
	})
	if userIDs != nil && len(userIDs) == 0 {
		return []models.Action{}, nil
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *ActionRepositoryImpl) Count(ctx context.Context, filter models.ActionFilter) (int64, error) {
	return r.Collection.CountDocuments(ctx, buildQuery(filter))
}

func (r *ActionRepositoryImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Action, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	actions := []models.Action{}
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func buildQuery(f models.ActionFilter) bson.M {
	query := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(f.OrganizationID); err == nil {
		query["organization_id"] = oid
	}
	if len(f.UserIDs) > 0 {
		ids := make([]primitive.ObjectID, 0, len(f.UserIDs))
		for _, id := range f.UserIDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, oid)
			}
		}
		query["user_id"] = bson.M{"$in": ids}
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.CreatedSince != nil {
		query["created_at"] = bson.M{"$gte": *f.CreatedSince}
	}
	return query
}
