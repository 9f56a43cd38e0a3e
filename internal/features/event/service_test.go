package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/storetest"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*EventServiceImpl, *storetest.Store, *models.User) {
	t.Helper()
	store := storetest.New()
	org := primitive.NewObjectID()
	user := &models.User{ID: primitive.NewObjectID(), OrganizationID: org, EmployeeID: "E1"}
	store.Users.Put(user)

	at := func(d time.Duration, typ models.EventType, userID string) models.Event {
		return models.Event{
			ID: primitive.NewObjectID(), OrganizationID: org, UserID: userID,
			Type: typ, Timestamp: testNow.Add(-d),
		}
	}
	uid := user.ID.Hex()
	err := store.Events.Append(context.Background(),
		at(time.Hour, models.EventActionCaptured, uid),
		at(time.Hour, models.EventPointsAwarded, uid),
		at(3*24*time.Hour, models.EventRankPromoted, uid),
		at(10*24*time.Hour, models.EventUserRegistered, uid),
		at(2*time.Hour, models.EventPointsAwarded, "someone-else"),
		models.Event{ID: primitive.NewObjectID(), OrganizationID: primitive.NewObjectID(), Type: models.EventPointsAwarded, Timestamp: testNow},
	)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	return &EventServiceImpl{
		Repo:     store.Events,
		UserRepo: store.Users,
		Hub:      NewHub(),
		Now:      func() time.Time { return testNow },
	}, store, user
}

func TestUserEvents(t *testing.T) {
	svc, _, user := newTestService(t)
	ctx := context.Background()

	page, err := svc.UserEvents(ctx, user.ID.Hex(), nil, 1, 10)
	if err != nil {
		t.Fatalf("UserEvents: %v", err)
	}
	if page.Total != 4 || len(page.Events) != 4 {
		t.Fatalf("expected 4 events, got %d/%d", len(page.Events), page.Total)
	}
	for i := 1; i < len(page.Events); i++ {
		if page.Events[i].Timestamp.After(page.Events[i-1].Timestamp) {
			t.Errorf("events not newest first at %d", i)
		}
	}

	since := testNow.Add(-48 * time.Hour)
	recent, _ := svc.UserEvents(ctx, user.ID.Hex(), &since, 1, 10)
	if recent.Total != 2 {
		t.Errorf("expected 2 events since %s, got %d", since, recent.Total)
	}
}

func TestFeedStartsAtPreviousLogin(t *testing.T) {
	svc, store, user := newTestService(t)
	ctx := context.Background()

	page, err := svc.Feed(ctx, user.ID.Hex(), 1, 50)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	// the last seven days of the organization
	if page.Total != 4 {
		t.Errorf("expected 4 events in the default window, got %d", page.Total)
	}

	prev := testNow.Add(-90 * time.Minute)
	user.PreviousLoginAt = &prev
	store.Users.Put(user)
	page, _ = svc.Feed(ctx, user.ID.Hex(), 1, 50)
	if page.Total != 2 {
		t.Errorf("expected 2 events since the previous login, got %d", page.Total)
	}
}

func TestQueryValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	later := testNow
	earlier := testNow.Add(-time.Hour)

	tests := []struct {
		name   string
		filter models.EventFilter
	}{
		{"unknown type", models.EventFilter{Type: "WARP_DRIVE_ENGAGED"}},
		{"inverted range", models.EventFilter{Since: &later, Until: &earlier}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Query(context.Background(), tt.filter, 1, 10); !errors.Is(err, errs.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	svc, _, user := newTestService(t)
	stats, err := svc.Statistics(context.Background(), user.OrganizationID.Hex())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalEvents != 5 || stats.TodayEvents != 3 || stats.WeekEvents != 4 || stats.MonthEvents != 5 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.EventTypeCounts[models.EventPointsAwarded] != 2 || stats.EventTypeCounts[models.EventMissionCompleted] != 0 {
		t.Errorf("unexpected type counts: %+v", stats.EventTypeCounts)
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	svc, _, user := newTestService(t)
	ch, cancel := svc.Subscribe(user.OrganizationID.Hex())
	defer cancel()

	svc.Publish([]models.Event{{OrganizationID: user.OrganizationID, Type: models.EventRankPromoted}})
	select {
	case ev := <-ch:
		if ev.Type != models.EventRankPromoted {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
