package storetest

import (
	"context"
	"sort"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Orgs struct {
	s *Store
}

// Put stores org as is, bypassing uniqueness checks.
func (r *Orgs) Put(org *models.Organization) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	r.s.orgs[org.ID.Hex()] = cloneOrg(org)
}

func (r *Orgs) Create(ctx context.Context, org *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orgs {
		if o.Name == org.Name || o.FederationID == org.FederationID {
			return errs.Conflict("Organization name or federation ID already exists")
		}
	}
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	r.s.orgs[org.ID.Hex()] = cloneOrg(org)
	return nil
}

func (r *Orgs) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, errs.NotFound("Organization not found: %s", id)
	}
	return cloneOrg(o), nil
}

func (r *Orgs) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	return r.findBy(func(o *models.Organization) bool { return o.Name == name }, "Organization not found: "+name)
}

func (r *Orgs) FindByFederationID(ctx context.Context, federationID string) (*models.Organization, error) {
	return r.findBy(func(o *models.Organization) bool { return o.FederationID == federationID },
		"Organization not found with federation ID: "+federationID)
}

func (r *Orgs) findBy(match func(*models.Organization) bool, notFound string) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orgs {
		if match(o) {
			return cloneOrg(o), nil
		}
	}
	return nil, errs.NotFound("%s", notFound)
}

func (r *Orgs) List(ctx context.Context, activeOnly bool) ([]models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Organization{}
	for _, o := range r.s.orgs {
		if activeOnly && !o.Active {
			continue
		}
		out = append(out, *cloneOrg(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Orgs) Update(ctx context.Context, org *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orgs[org.ID.Hex()]
	if !ok || stored.Version != org.Version {
		return errs.ErrVersionConflict
	}
	org.Version++
	r.s.orgs[org.ID.Hex()] = cloneOrg(org)
	return nil
}

func (r *Orgs) EnsureIndexes(ctx context.Context) error { return nil }
