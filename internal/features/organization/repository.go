package organization

import (
	"context"
	"errors"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	FindByName(ctx context.Context, name string) (*models.Organization, error)
	FindByFederationID(ctx context.Context, federationID string) (*models.Organization, error)
	List(ctx context.Context, activeOnly bool) ([]models.Organization, error)
	// Update replaces the document only if its stored version still equals org.Version,
	// and bumps org.Version on success. A lost race yields errs.ErrVersionConflict.
	Update(ctx context.Context, org *models.Organization) error
	EnsureIndexes(ctx context.Context) error
}

type OrganizationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOrganizationRepository(mongodb *database.MongodbDB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		Collection: mongodb.DB.Collection("organizations"),
	}
}

func (r *OrganizationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "federation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *OrganizationRepositoryImpl) Create(ctx context.Context, org *models.Organization) error {
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, org)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("Organization name or federation ID already exists")
	}
	return err
}

func (r *OrganizationRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.NotFound("Organization not found: %s", id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, "Organization not found: "+id)
}

func (r *OrganizationRepositoryImpl) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"name": name}, "Organization not found: "+name)
}

func (r *OrganizationRepositoryImpl) FindByFederationID(ctx context.Context, federationID string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"federation_id": federationID}, "Organization not found with federation ID: "+federationID)
}

func (r *OrganizationRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]models.Organization, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := r.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	orgs := []models.Organization{}
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	for i := range orgs {
		ensureCatalogs(&orgs[i])
	}
	return orgs, nil
}

func (r *OrganizationRepositoryImpl) Update(ctx context.Context, org *models.Organization) error {
	filter := bson.M{"_id": org.ID, "version": org.Version}
	update := bson.M{
		"$set": bson.M{
			"name":                org.Name,
			"federation_id":       org.FederationID,
			"description":         org.Description,
			"active":              org.Active,
			"action_types":        org.ActionTypes,
			"mission_types":       org.MissionTypes,
			"rank_configurations": org.RankConfigurations,
			"updated_at":          org.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("Organization name or federation ID already exists")
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrVersionConflict
	}
	org.Version++
	return nil
}

func (r *OrganizationRepositoryImpl) findOne(ctx context.Context, filter bson.M, notFound string) (*models.Organization, error) {
	var org models.Organization
	err := r.Collection.FindOne(ctx, filter).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("%s", notFound)
	}
	if err != nil {
		return nil, err
	}
	ensureCatalogs(&org)
	return &org, nil
}

// ensureCatalogs replaces nil maps left by documents written without catalogs.
func ensureCatalogs(org *models.Organization) {
	if org.ActionTypes == nil {
		org.ActionTypes = map[string]models.ActionType{}
	}
	if org.MissionTypes == nil {
		org.MissionTypes = map[string]models.MissionType{}
	}
	if org.RankConfigurations == nil {
		org.RankConfigurations = map[string]models.RankConfiguration{}
	}
}
