package storetest

import (
	"context"
	"slices"
	"sort"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Actions struct {
	s *Store
}

func (r *Actions) Create(ctx context.Context, a *models.Action) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.actions {
		if sameSlot(x, a.OrganizationID, a.UserID, a.ActionTypeID, a.ActionDate) {
			return errs.Conflict("Action already recorded for %s", a.ActionDate.Format(time.DateOnly))
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	r.s.actions[a.ID.Hex()] = cloneAction(a)
	return nil
}

func (r *Actions) FindByID(ctx context.Context, id string) (*models.Action, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.actions[id]
	if !ok {
		return nil, errs.NotFound("Action not found: %s", id)
	}
	return cloneAction(a), nil
}

func (r *Actions) Exists(ctx context.Context, organizationID, userID primitive.ObjectID, actionTypeID string, day time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.actions {
		if sameSlot(x, organizationID, userID, actionTypeID, day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Actions) Transition(ctx context.Context, a *models.Action, from models.ActionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.actions[a.ID.Hex()]
	if !ok || stored.Status != from {
		return errs.InvalidState("Action is not %s: %s", from, a.ID.Hex())
	}
	stored.Status = a.Status
	stored.ApproverID = a.ApproverID
	stored.ApprovalNotes = a.ApprovalNotes
	stored.RejectionReason = a.RejectionReason
	stored.ApprovedAt = a.ApprovedAt
	stored.RejectedAt = a.RejectedAt
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *Actions) ListByUser(ctx context.Context, userID string, limit, offset int64) ([]models.Action, int64, error) {
	out := r.filter(func(a *models.Action) bool { return a.UserID.Hex() == userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ActionDate.Equal(out[j].ActionDate) {
			return out[i].ActionDate.After(out[j].ActionDate)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return window(out, limit, offset), int64(len(out)), nil
}

func (r *Actions) ListPending(ctx context.Context, organizationID string, userIDs []string) ([]models.Action, error) {
	if userIDs != nil && len(userIDs) == 0 {
		return []models.Action{}, nil
	}
	out := r.filter(matches(models.ActionFilter{
		OrganizationID: organizationID,
		UserIDs:        userIDs,
		Status:         models.ActionPendingApproval,
	}))
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Actions) Count(ctx context.Context, filter models.ActionFilter) (int64, error) {
	return int64(len(r.filter(matches(filter)))), nil
}

func (r *Actions) EnsureIndexes(ctx context.Context) error { return nil }

func (r *Actions) filter(match func(*models.Action) bool) []models.Action {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Action{}
	for _, a := range r.s.actions {
		if match(a) {
			out = append(out, *cloneAction(a))
		}
	}
	return out
}

func matches(f models.ActionFilter) func(*models.Action) bool {
	return func(a *models.Action) bool {
		if f.OrganizationID != "" && a.OrganizationID.Hex() != f.OrganizationID {
			return false
		}
		if len(f.UserIDs) > 0 && !slices.Contains(f.UserIDs, a.UserID.Hex()) {
			return false
		}
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if f.CreatedSince != nil && a.CreatedAt.Before(*f.CreatedSince) {
			return false
		}
		return true
	}
}

func sameSlot(a *models.Action, orgID, userID primitive.ObjectID, actionTypeID string, day time.Time) bool {
	return a.OrganizationID == orgID && a.UserID == userID &&
		a.ActionTypeID == actionTypeID && a.ActionDate.Equal(day)
}
