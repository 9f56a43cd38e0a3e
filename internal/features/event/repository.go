package event

import (
	"context"
	"time"

	"go-gamifier/internal/common/models"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Appender is the write side of the event log. Events are never updated or deleted.
type Appender interface {
	Append(ctx context.Context, events ...models.Event) error
}

type EventRepository interface {
	Appender
	List(ctx context.Context, filter models.EventFilter, limit, offset int64) ([]models.Event, int64, error)
	Count(ctx context.Context, filter models.EventFilter) (int64, error)
	// SumPointsByUser totals POINTS_AWARDED payloads per user id in [from, to).
	SumPointsByUser(ctx context.Context, organizationID string, from, to time.Time) (map[string]int, error)
	EnsureIndexes(ctx context.Context) error
}

type EventRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewEventRepository(mongodb *database.MongodbDB) EventRepository {
	return &EventRepositoryImpl{
		Collection: mongodb.DB.Collection("events"),
	}
}

func (r *EventRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

func (r *EventRepositoryImpl) Append(ctx context.Context, events ...models.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i := range events {
		if events[i].ID.IsZero() {
			events[i].ID = primitive.NewObjectID()
		}
		docs[i] = events[i]
	}
	_, err := r.Collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *EventRepositoryImpl) List(ctx context.Context, filter models.EventFilter, limit, offset int64) ([]models.Event, int64, error) {
	query := buildQuery(filter)

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip(offset).
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	events := []models.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *EventRepositoryImpl) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	return r.Collection.CountDocuments(ctx, buildQuery(filter))
}

func (r *EventRepositoryImpl) SumPointsByUser(ctx context.Context, organizationID string, from, to time.Time) (map[string]int, error) {
	orgOID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return map[string]int{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organization_id": orgOID,
			"event_type":      models.EventPointsAwarded,
			"timestamp":       bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$user_id",
			"total": bson.M{"$sum": "$points"},
		}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		UserID string `bson:"_id"`
		Total  int    `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.UserID] = row.Total
	}
	return sums, nil
}

func buildQuery(filter models.EventFilter) bson.M {
	query := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(filter.OrganizationID); err == nil {
		query["organization_id"] = oid
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Type != "" {
		query["event_type"] = filter.Type
	}
	if filter.Since != nil || filter.Until != nil {
		ts := bson.M{}
		if filter.Since != nil {
			ts["$gte"] = *filter.Since
		}
		if filter.Until != nil {
			ts["$lt"] = *filter.Until
		}
		query["timestamp"] = ts
	}
	return query
}
