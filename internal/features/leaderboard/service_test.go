package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/internal/storetest"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func oid(n int) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", n))
	return id
}

func strPtr(s string) *string { return &s }

type fixture struct {
	svc   *LeaderboardServiceImpl
	store *storetest.Store
	org   *models.Organization
	users []*models.User
}

// newFixture ranks five users: 200, 150, 150, 50 and 0 points.
func newFixture(cache *Cache) *fixture {
	store := storetest.New()
	org := &models.Organization{
		ID:   oid(100),
		Name: "Starfleet",
		RankConfigurations: map[string]models.RankConfiguration{
			"cadet":  {ID: "cadet", Name: "Cadet", PointsThreshold: 0, Insignia: "🎓", Order: 1, Active: true},
			"ensign": {ID: "ensign", Name: "Ensign", PointsThreshold: 100, Insignia: "⭐", Order: 2, Active: true},
		},
	}
	store.Orgs.Put(org)

	specs := []struct {
		points int
		dept   string
		rank   *string
	}{
		{200, "Engineering", strPtr("ensign")},
		{150, "Engineering", strPtr("ensign")},
		{150, "Science", strPtr("ensign")},
		{50, "Science", strPtr("cadet")},
		{0, "Science", nil},
	}
	f := &fixture{store: store, org: org}
	for i, sp := range specs {
		u := &models.User{
			ID:             oid(i + 1),
			OrganizationID: org.ID,
			EmployeeID:     fmt.Sprintf("E%d", i+1),
			Name:           "Crew",
			Surname:        fmt.Sprintf("Member%d", i+1),
			Department:     sp.dept,
			TotalPoints:    sp.points,
			CurrentRankID:  sp.rank,
		}
		store.Users.Put(u)
		f.users = append(f.users, u)
	}
	f.svc = &LeaderboardServiceImpl{
		Users:        store.Users,
		Orgs:         store.Orgs,
		Points:       store.Events,
		Cache:        cache,
		NearbyWindow: 1,
	}
	return f
}

func positions(entries []Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Position
	}
	return out
}

func equalPositions(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAllTimeSharesPositionsOnTies(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	orgID := f.org.ID.Hex()

	tests := []struct {
		name        string
		page, limit int64
		wantIDs     []string
		want        []int64
	}{
		{"full", 1, 10, []string{"E1", "E2", "E3", "E4", "E5"}, []int64{1, 2, 2, 4, 5}},
		{"tie across pages", 2, 2, []string{"E3", "E4"}, []int64{2, 4}},
		{"last page", 3, 2, []string{"E5"}, []int64{5}},
		{"past the end", 4, 2, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.AllTime(ctx, orgID, tt.page, tt.limit)
			if err != nil {
				t.Fatalf("AllTime: %v", err)
			}
			if page.Total != 5 {
				t.Errorf("expected total 5, got %d", page.Total)
			}
			if len(page.Entries) != len(tt.wantIDs) {
				t.Fatalf("expected %d entries, got %+v", len(tt.wantIDs), page.Entries)
			}
			for i, e := range page.Entries {
				if e.EmployeeID != tt.wantIDs[i] {
					t.Errorf("entry %d: expected %s, got %s", i, tt.wantIDs[i], e.EmployeeID)
				}
			}
			if got := positions(page.Entries); !equalPositions(got, tt.want) {
				t.Errorf("expected positions %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDepartmentLeaderboard(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	page, err := f.svc.Department(ctx, f.org.ID.Hex(), "Science", 1, 10)
	if err != nil {
		t.Fatalf("Department: %v", err)
	}
	if page.Total != 3 || !equalPositions(positions(page.Entries), []int64{1, 2, 3}) {
		t.Errorf("unexpected department page: %+v", page)
	}
	if page.Entries[0].RankName != "Ensign" || page.Entries[2].RankName != "" {
		t.Errorf("unexpected rank names: %+v", page.Entries)
	}

	if _, err := f.svc.Department(ctx, f.org.ID.Hex(), "", 1, 10); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("blank department: expected validation error, got %v", err)
	}
}

func TestUserPosition(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	pos, err := f.svc.UserPosition(ctx, f.org.ID.Hex(), f.users[3].ID.Hex())
	if err != nil {
		t.Fatalf("UserPosition: %v", err)
	}
	if pos.Position != 4 || pos.TotalUsers != 5 || pos.Points != 50 || pos.RankName != "Cadet" {
		t.Errorf("unexpected position: %+v", pos)
	}
	if len(pos.Nearby) != 3 || pos.Nearby[0].EmployeeID != "E3" || pos.Nearby[2].EmployeeID != "E5" {
		t.Errorf("unexpected nearby entries: %+v", pos.Nearby)
	}

	top, _ := f.svc.UserPosition(ctx, f.org.ID.Hex(), f.users[0].ID.Hex())
	if len(top.Nearby) != 2 {
		t.Errorf("nearby window should be clipped at the top, got %+v", top.Nearby)
	}

	stranger := &models.User{ID: oid(50), OrganizationID: oid(200), EmployeeID: "X"}
	f.store.Users.Put(stranger)
	if _, err := f.svc.UserPosition(ctx, f.org.ID.Hex(), stranger.ID.Hex()); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("foreign user: expected not found, got %v", err)
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture(nil)
	stats, err := f.svc.Statistics(context.Background(), f.org.ID.Hex())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalUsers != 5 || stats.ActiveUsers != 4 || stats.AveragePoints != 110 {
		t.Errorf("unexpected statistics: %+v", stats)
	}
	if stats.TopScorer == nil || stats.TopScorer.EmployeeID != "E1" {
		t.Errorf("unexpected top scorer: %+v", stats.TopScorer)
	}
	want := map[string]int64{"Ensign": 3, "Cadet": 1, unrankedLabel: 1}
	for k, v := range want {
		if stats.RankDistribution[k] != v {
			t.Errorf("distribution[%s]: expected %d, got %d", k, v, stats.RankDistribution[k])
		}
	}
}

func TestMonthlyCountsOnlyThatMonth(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	award := func(u *models.User, points int, at time.Time) models.Event {
		return models.Event{
			ID: primitive.NewObjectID(), OrganizationID: u.OrganizationID, UserID: u.ID.Hex(),
			Type: models.EventPointsAwarded, Points: points, Timestamp: at,
		}
	}
	_ = f.store.Events.Append(ctx,
		award(f.users[3], 80, march),
		award(f.users[0], 30, march),
		award(f.users[1], 50, march),
		award(f.users[1], 30, march.AddDate(0, 0, 5)),
		award(f.users[2], 10, time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)),
		award(f.users[4], 40, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	)

	page, err := f.svc.Monthly(ctx, f.org.ID.Hex(), march, 1, 10)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if page.Month != "2024-03" || page.Total != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
	wantIDs := []string{"E2", "E4", "E1"}
	for i, e := range page.Entries {
		if e.EmployeeID != wantIDs[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantIDs[i], e.EmployeeID)
		}
	}
	if got := positions(page.Entries); !equalPositions(got, []int64{1, 1, 3}) {
		t.Errorf("unexpected positions %v", got)
	}
	if page.Entries[0].Points != 80 {
		t.Errorf("monthly points should be the monthly sum, got %d", page.Entries[0].Points)
	}
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	cache := NewCache(&config.Config{LeaderboardCacheSize: 16, LeaderboardCacheTTL: time.Minute})
	f := newFixture(cache)
	ctx := context.Background()
	orgID := f.org.ID.Hex()

	if _, err := f.svc.AllTime(ctx, orgID, 1, 10); err != nil {
		t.Fatalf("AllTime: %v", err)
	}
	f.users[4].TotalPoints = 1000
	f.store.Users.Put(f.users[4])

	cached, _ := f.svc.AllTime(ctx, orgID, 1, 10)
	if cached.Entries[0].EmployeeID != "E1" {
		t.Errorf("expected the cached view, got %+v", cached.Entries[0])
	}

	cache.Invalidate(orgID)
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after invalidation, got %d", cache.Len())
	}
	fresh, _ := f.svc.AllTime(ctx, orgID, 1, 10)
	if fresh.Entries[0].EmployeeID != "E5" {
		t.Errorf("expected fresh standings, got %+v", fresh.Entries[0])
	}
}

func TestDisabledCache(t *testing.T) {
	cache := NewCache(&config.Config{})
	cache.Add("org|x", 1)
	if _, ok := cache.Get("org|x"); ok {
		t.Error("a zero-sized cache should not store values")
	}
	var nilCache *Cache
	nilCache.Invalidate("org")
}

func TestStaleViewAfterInvalidateIsNotServed(t *testing.T) {
	cache := NewCache(&config.Config{LeaderboardCacheSize: 16, LeaderboardCacheTTL: time.Minute})
	orgID := oid(100).Hex()

	// A reader takes its key, then a writer commits and invalidates before the
	// reader stores what it computed.
	key := cache.Key(orgID, "alltime", "1", "10")
	cache.Invalidate(orgID)
	cache.Add(key, "stale")

	if _, ok := cache.Get(cache.Key(orgID, "alltime", "1", "10")); ok {
		t.Error("a view computed before the invalidation was served")
	}
	if cache.Key(oid(101).Hex(), "stats") != oid(101).Hex()+"|0|stats" {
		t.Errorf("other organizations keep their generation, got %q", cache.Key(oid(101).Hex(), "stats"))
	}
}

func TestNewCrewMemberRefreshesCachedViews(t *testing.T) {
	cache := NewCache(&config.Config{LeaderboardCacheSize: 16, LeaderboardCacheTTL: time.Minute})
	f := newFixture(cache)
	ctx := context.Background()
	orgID := f.org.ID.Hex()

	stats, err := f.svc.Statistics(ctx, orgID)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalUsers != 5 {
		t.Fatalf("expected 5 users, got %d", stats.TotalUsers)
	}
	if _, err := f.svc.AllTime(ctx, orgID, 1, 10); err != nil {
		t.Fatalf("AllTime: %v", err)
	}

	f.store.Users.Put(&models.User{
		ID:             oid(6),
		OrganizationID: f.org.ID,
		EmployeeID:     "E6",
		Name:           "Crew",
		Surname:        "Member6",
		Department:     "Science",
		TotalPoints:    10,
	})
	cache.Invalidate(orgID)

	stats, _ = f.svc.Statistics(ctx, orgID)
	if stats.TotalUsers != 6 {
		t.Errorf("expected 6 users after invalidation, got %d", stats.TotalUsers)
	}
	page, _ := f.svc.AllTime(ctx, orgID, 1, 10)
	if len(page.Entries) != 6 {
		t.Errorf("expected 6 entries after invalidation, got %d", len(page.Entries))
	}
}
