package user

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

// UserRepository owns user identity and profile data. It reads the progress section
// (points, rank, missions) but has no method that writes it; that belongs to scoring.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindByEmployeeID(ctx context.Context, organizationID, employeeID string) (*models.User, error)
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int64) ([]models.User, int64, error)
	ListByManager(ctx context.Context, organizationID, managerEmployeeID string) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, id string, at time.Time) error

	// Standings are ordered by total points descending, then id ascending.
	// A limit of 0 returns every match. An empty department matches everyone.
	ListStandings(ctx context.Context, organizationID, department string, limit, offset int64) ([]models.User, error)
	CountStandings(ctx context.Context, organizationID, department string) (int64, error)
	CountAbove(ctx context.Context, organizationID, department string, points int) (int64, error)

	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "employee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "total_points", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "manager_employee_id", Value: 1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "department", Value: 1}, {Key: "total_points", Value: -1}}},
	})
	return err
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("Employee ID already exists: %s", user.EmployeeID)
	}
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.NotFound("User not found: %s", id)
	}

	var user models.User
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("User not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var objectIDs []primitive.ObjectID
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}

	if len(objectIDs) == 0 {
		return []models.User{}, nil
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *UserRepositoryImpl) FindByEmployeeID(ctx context.Context, organizationID, employeeID string) (*models.User, error) {
	orgOID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, errs.NotFound("Organization not found: %s", organizationID)
	}

	var user models.User
	err = r.Collection.FindOne(ctx, bson.M{"organization_id": orgOID, "employee_id": employeeID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("User not found with employee ID: %s", employeeID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, limit, offset int64) ([]models.User, int64, error) {
	orgOID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return []models.User{}, 0, nil
	}
	filter := bson.M{"organization_id": orgOID}

	opts := options.Find().SetSort(bson.D{{Key: "surname", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	users, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) ListByManager(ctx context.Context, organizationID, managerEmployeeID string) ([]models.User, error) {
	orgOID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return []models.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "surname", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, bson.M{"organization_id": orgOID, "manager_employee_id": managerEmployeeID}, opts)
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, user *models.User) error {
	update := bson.M{
		"$set": bson.M{
			"name":                user.Name,
			"surname":             user.Surname,
			"manager_employee_id": user.ManagerEmployeeID,
			"department":          user.Department,
			"role":                user.Role,
			"updated_at":          user.UpdatedAt,
		},
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("User not found: %s", user.ID.Hex())
	}
	return nil
}

// RecordLogin moves the last login into previous_login_at and stamps the new one.
func (r *UserRepositoryImpl) RecordLogin(ctx context.Context, id string, at time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.NotFound("User not found: %s", id)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"previous_login_at": "$last_login_at",
			"last_login_at":     at,
		}}},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("User not found: %s", id)
	}
	return nil
}

func (r *UserRepositoryImpl) ListStandings(ctx context.Context, organizationID, department string, limit, offset int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "total_points", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	return r.find(ctx, standingsFilter(organizationID, department), opts)
}

func (r *UserRepositoryImpl) CountStandings(ctx context.Context, organizationID, department string) (int64, error) {
	return r.Collection.CountDocuments(ctx, standingsFilter(organizationID, department))
}

func (r *UserRepositoryImpl) CountAbove(ctx context.Context, organizationID, department string, points int) (int64, error) {
	filter := standingsFilter(organizationID, department)
	filter["total_points"] = bson.M{"$gt": points}
	return r.Collection.CountDocuments(ctx, filter)
}

func (r *UserRepositoryImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func standingsFilter(organizationID, department string) bson.M {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(organizationID); err == nil {
		filter["organization_id"] = oid
	} else {
		filter["organization_id"] = primitive.NilObjectID
	}
	if department != "" {
		filter["department"] = department
	}
	return filter
}
