package storetest

import (
	"context"
	"sort"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	s *Store

	// SaveHook runs before SaveProgress compares versions. Tests use it to
	// simulate a writer in another process.
	SaveHook func(u *models.User)
}

// Put stores u as is, bypassing uniqueness checks.
func (r *Users) Put(u *models.User) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.MissionProgress == nil {
		u.MissionProgress = map[string]*models.MissionProgress{}
	}
	r.s.users[u.ID.Hex()] = cloneUser(u)
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if x.OrganizationID == u.OrganizationID && x.EmployeeID == u.EmployeeID {
			return errs.Conflict("Employee ID already exists: %s", u.EmployeeID)
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.s.users[u.ID.Hex()] = cloneUser(u)
	return nil
}

func (r *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.NotFound("User not found: %s", id)
	}
	return cloneUser(u), nil
}

func (r *Users) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (r *Users) FindByEmployeeID(ctx context.Context, organizationID, employeeID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.OrganizationID.Hex() == organizationID && u.EmployeeID == employeeID {
			return cloneUser(u), nil
		}
	}
	return nil, errs.NotFound("User not found with employee ID: %s", employeeID)
}

func (r *Users) ListByOrganization(ctx context.Context, organizationID string, limit, offset int64) ([]models.User, int64, error) {
	users := r.filter(func(u *models.User) bool { return u.OrganizationID.Hex() == organizationID })
	sort.Slice(users, func(i, j int) bool {
		if users[i].Surname != users[j].Surname {
			return users[i].Surname < users[j].Surname
		}
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
	return window(users, limit, offset), int64(len(users)), nil
}

func (r *Users) ListByManager(ctx context.Context, organizationID, managerEmployeeID string) ([]models.User, error) {
	users := r.filter(func(u *models.User) bool {
		return u.OrganizationID.Hex() == organizationID && u.ManagerEmployeeID == managerEmployeeID
	})
	sort.Slice(users, func(i, j int) bool {
		if users[i].Surname != users[j].Surname {
			return users[i].Surname < users[j].Surname
		}
		return users[i].Name < users[j].Name
	})
	return users, nil
}

func (r *Users) UpdateProfile(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID.Hex()]
	if !ok {
		return errs.NotFound("User not found: %s", u.ID.Hex())
	}
	stored.Name = u.Name
	stored.Surname = u.Surname
	stored.ManagerEmployeeID = u.ManagerEmployeeID
	stored.Department = u.Department
	stored.Role = u.Role
	stored.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *Users) RecordLogin(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return errs.NotFound("User not found: %s", id)
	}
	stored.PreviousLoginAt = stored.LastLoginAt
	stored.LastLoginAt = &at
	return nil
}

func (r *Users) ListStandings(ctx context.Context, organizationID, department string, limit, offset int64) ([]models.User, error) {
	users := r.filter(standings(organizationID, department))
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalPoints != users[j].TotalPoints {
			return users[i].TotalPoints > users[j].TotalPoints
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
	return window(users, limit, offset), nil
}

func (r *Users) CountStandings(ctx context.Context, organizationID, department string) (int64, error) {
	return int64(len(r.filter(standings(organizationID, department)))), nil
}

func (r *Users) CountAbove(ctx context.Context, organizationID, department string, points int) (int64, error) {
	match := standings(organizationID, department)
	return int64(len(r.filter(func(u *models.User) bool { return match(u) && u.TotalPoints > points }))), nil
}

// SaveProgress implements the scoring progress repository.
func (r *Users) SaveProgress(ctx context.Context, u *models.User) error {
	if r.SaveHook != nil {
		r.SaveHook(u)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID.Hex()]
	if !ok || stored.ProgressVersion != u.ProgressVersion {
		return errs.ErrVersionConflict
	}
	next := cloneUser(u)
	stored.TotalPoints = next.TotalPoints
	stored.CurrentRankID = next.CurrentRankID
	stored.MissionProgress = next.MissionProgress
	stored.UpdatedAt = next.UpdatedAt
	stored.ProgressVersion++
	u.ProgressVersion++
	return nil
}

// BumpVersion simulates a progress write from elsewhere.
func (r *Users) BumpVersion(id string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.ProgressVersion++
	}
}

func (r *Users) EnsureIndexes(ctx context.Context) error { return nil }

func (r *Users) filter(match func(*models.User) bool) []models.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if match(u) {
			out = append(out, *cloneUser(u))
		}
	}
	return out
}

func standings(organizationID, department string) func(*models.User) bool {
	return func(u *models.User) bool {
		return u.OrganizationID.Hex() == organizationID && (department == "" || u.Department == department)
	}
}

func window[T any](items []T, limit, offset int64) []T {
	if offset >= int64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}
