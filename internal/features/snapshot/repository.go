package snapshot

import (
	"context"
	"errors"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SnapshotRepository interface {
	// Save replaces any earlier snapshot of the same organization and month.
	Save(ctx context.Context, s *Snapshot) error
	Find(ctx context.Context, organizationID, month string) (*Snapshot, error)
	List(ctx context.Context, organizationID string) ([]Snapshot, error)
	MarkExported(ctx context.Context, s *Snapshot, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type SnapshotRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSnapshotRepository(mongodb *database.MongodbDB) SnapshotRepository {
	return &SnapshotRepositoryImpl{
		Collection: mongodb.DB.Collection("leaderboard_snapshots"),
	}
}

func (r *SnapshotRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *SnapshotRepositoryImpl) Save(ctx context.Context, s *Snapshot) error {
	filter := bson.M{"organization_id": s.OrganizationID, "month": s.Month}
	update := bson.M{
		"$set": bson.M{
			"entries":  s.Entries,
			"taken_at": s.TakenAt,
		},
		"$unset": bson.M{"exported_at": ""},
	}
	res, err := r.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

func (r *SnapshotRepositoryImpl) Find(ctx context.Context, organizationID, month string) (*Snapshot, error) {
	orgOID, err := objectID(organizationID)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	err = r.Collection.FindOne(ctx, bson.M{"organization_id": orgOID, "month": month}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("Snapshot not found for %s", month)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnapshotRepositoryImpl) List(ctx context.Context, organizationID string) ([]Snapshot, error) {
	orgOID, err := objectID(organizationID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "month", Value: -1}}).
		SetProjection(bson.M{"entries": 0})
	cursor, err := r.Collection.Find(ctx, bson.M{"organization_id": orgOID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	snapshots := []Snapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *SnapshotRepositoryImpl) MarkExported(ctx context.Context, s *Snapshot, at time.Time) error {
	_, err := r.Collection.UpdateOne(ctx,
		bson.M{"organization_id": s.OrganizationID, "month": s.Month},
		bson.M{"$set": bson.M{"exported_at": at}})
	if err != nil {
		return err
	}
	s.ExportedAt = &at
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.NotFound("Organization not found: %s", id)
	}
	return oid, nil
}
