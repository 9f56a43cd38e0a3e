package storetest

import (
	"context"
	"sort"
	"time"

	"go-gamifier/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Events struct {
	s *Store
}

func (r *Events) Append(ctx context.Context, events ...models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range events {
		if events[i].ID.IsZero() {
			events[i].ID = primitive.NewObjectID()
		}
		r.s.events = append(r.s.events, events[i])
	}
	return nil
}

// All returns every stored event in append order.
func (r *Events) All() []models.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Event(nil), r.s.events...)
}

// OfType returns the stored events of typ in append order.
func (r *Events) OfType(typ models.EventType) []models.Event {
	var out []models.Event
	for _, e := range r.All() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *Events) List(ctx context.Context, filter models.EventFilter, limit, offset int64) ([]models.Event, int64, error) {
	out := r.filter(filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return window(out, limit, offset), int64(len(out)), nil
}

func (r *Events) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	return int64(len(r.filter(filter))), nil
}

func (r *Events) SumPointsByUser(ctx context.Context, organizationID string, from, to time.Time) (map[string]int, error) {
	sums := map[string]int{}
	for _, e := range r.filter(models.EventFilter{
		OrganizationID: organizationID,
		Type:           models.EventPointsAwarded,
		Since:          &from,
		Until:          &to,
	}) {
		sums[e.UserID] += e.Points
	}
	return sums, nil
}

func (r *Events) EnsureIndexes(ctx context.Context) error { return nil }

func (r *Events) filter(f models.EventFilter) []models.Event {
	out := []models.Event{}
	for _, e := range r.All() {
		if f.OrganizationID != "" && e.OrganizationID.Hex() != f.OrganizationID {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Since != nil && e.Timestamp.Before(*f.Since) {
			continue
		}
		if f.Until != nil && !e.Timestamp.Before(*f.Until) {
			continue
		}
		out = append(out, e)
	}
	return out
}
