package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/storetest"
	"go-gamifier/pkg/keylock"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *storetest.Store
	pub    *storetest.Publisher
	cache  *storetest.Invalidations
	engine *Engine
	org    *models.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storetest.New()
	org := &models.Organization{
		ID:     primitive.NewObjectID(),
		Name:   "Starfleet",
		Active: true,
		ActionTypes: map[string]models.ActionType{
			"a": {ID: "a", Name: "Away Mission", Points: 50, Active: true},
			"b": {ID: "b", Name: "First Contact", Points: 100, Active: true},
			"c": {ID: "c", Name: "Repair", Points: 75, Active: true},
		},
		MissionTypes: map[string]models.MissionType{
			"m": {ID: "m", Name: "Explorer", Badge: "🌌", RequiredActionTypeIDs: []string{"a", "b"}, BonusPoints: 100, Active: true},
		},
		RankConfigurations: map[string]models.RankConfiguration{
			"cadet":      {ID: "cadet", Name: "Cadet", PointsThreshold: 0, Insignia: "🔸", Order: 1, Active: true},
			"ensign":     {ID: "ensign", Name: "Ensign", PointsThreshold: 100, Insignia: "⭐", Order: 2, Active: true},
			"lieutenant": {ID: "lieutenant", Name: "Lieutenant", PointsThreshold: 300, Insignia: "⭐⭐", Order: 3, Active: true},
		},
	}
	store.Orgs.Put(org)

	pub := &storetest.Publisher{}
	cache := &storetest.Invalidations{}
	return &fixture{
		store: store,
		pub:   pub,
		cache: cache,
		org:   org,
		engine: &Engine{
			Users:     store.Users,
			Orgs:      store.Orgs,
			Progress:  store.Users,
			Events:    store.Events,
			Tx:        store.Tx,
			Cache:     cache,
			Publisher: pub,
			Logger:    zap.NewNop(),
			Locks:     keylock.New(),
			Retries:   3,
			Now:       func() time.Time { return testNow },
		},
	}
}

func (f *fixture) addUser(employeeID string) *models.User {
	u := &models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: f.org.ID,
		EmployeeID:     employeeID,
		Name:           "Test",
		Surname:        employeeID,
		Role:           models.RoleUser,
	}
	f.store.Users.Put(u)
	return u
}

func (f *fixture) reload(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.store.Users.FindByID(context.Background(), id.Hex())
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return u
}

func rankOf(u *models.User) string {
	if u.CurrentRankID == nil {
		return ""
	}
	return *u.CurrentRankID
}

func TestAwardPointsPromotesToHighestEligibleRank(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	ctx := context.Background()

	if _, err := f.engine.AwardPoints(ctx, u.ID.Hex(), 100, "x"); err != nil {
		t.Fatalf("first award: %v", err)
	}
	got := f.reload(t, u.ID)
	if got.TotalPoints != 100 || rankOf(got) != "ensign" {
		t.Fatalf("after first award: points=%d rank=%q, want 100 ensign", got.TotalPoints, rankOf(got))
	}

	if _, err := f.engine.AwardPoints(ctx, u.ID.Hex(), 250, "y"); err != nil {
		t.Fatalf("second award: %v", err)
	}
	got = f.reload(t, u.ID)
	if got.TotalPoints != 350 || rankOf(got) != "lieutenant" {
		t.Fatalf("after second award: points=%d rank=%q, want 350 lieutenant", got.TotalPoints, rankOf(got))
	}

	promotions := f.store.Events.OfType(models.EventRankPromoted)
	if len(promotions) != 2 {
		t.Fatalf("expected 2 promotions, got %d", len(promotions))
	}
	if promotions[0].RefID != "ensign" || promotions[1].RefID != "lieutenant" {
		t.Errorf("unexpected promotion order: %s, %s", promotions[0].RefID, promotions[1].RefID)
	}
	if promotions[1].Message != "Promoted to rank: Lieutenant ⭐⭐" {
		t.Errorf("unexpected message %q", promotions[1].Message)
	}

	awards := f.store.Events.OfType(models.EventPointsAwarded)
	if len(awards) != 2 || awards[0].Points != 100 || awards[1].Points != 250 {
		t.Fatalf("unexpected award events: %+v", awards)
	}
	if awards[0].Message != "Awarded 100 points - x" {
		t.Errorf("unexpected message %q", awards[0].Message)
	}
	if len(f.pub.Events()) != 4 {
		t.Errorf("expected 4 published events, got %d", len(f.pub.Events()))
	}
	if f.cache.Count() != 2 {
		t.Errorf("expected 2 cache invalidations, got %d", f.cache.Count())
	}
}

func TestAwardPointsNeverDemotes(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	lt := "lieutenant"
	u.CurrentRankID = &lt
	u.TotalPoints = 50 // below the lieutenant threshold, e.g. after the threshold was raised
	f.store.Users.Put(u)

	if _, err := f.engine.AwardPoints(context.Background(), u.ID.Hex(), 10, "x"); err != nil {
		t.Fatalf("award: %v", err)
	}
	if got := f.reload(t, u.ID); rankOf(got) != "lieutenant" {
		t.Errorf("rank changed to %q", rankOf(got))
	}
	if n := len(f.store.Events.OfType(models.EventRankPromoted)); n != 0 {
		t.Errorf("expected no promotion, got %d", n)
	}
}

func TestAwardPointsRejectsNegativeAmount(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")

	_, err := f.engine.AwardPoints(context.Background(), u.ID.Hex(), -5, "oops")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := f.reload(t, u.ID); got.TotalPoints != 0 {
		t.Errorf("points changed to %d", got.TotalPoints)
	}
	if len(f.store.Events.All()) != 0 {
		t.Errorf("expected no events")
	}
}

func TestAwardPointsUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.AwardPoints(context.Background(), primitive.NewObjectID().Hex(), 5, "x")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentAwardsAreNotLost(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.AwardPoints(context.Background(), u.ID.Hex(), 10, "burst"); err != nil {
				t.Errorf("award: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.reload(t, u.ID); got.TotalPoints != workers*10 {
		t.Errorf("expected %d points, got %d", workers*10, got.TotalPoints)
	}
	if n := len(f.store.Events.OfType(models.EventPointsAwarded)); n != workers {
		t.Errorf("expected %d award events, got %d", workers, n)
	}
}

func TestRunRetriesAfterVersionConflict(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")

	conflicts := 1
	f.store.Users.SaveHook = func(*models.User) {
		if conflicts > 0 {
			conflicts--
			f.store.Users.BumpVersion(u.ID.Hex())
		}
	}

	calls := 0
	_, err := f.engine.Run(context.Background(), u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		calls++
		return c.AwardPoints(20, "retry")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if got := f.reload(t, u.ID); got.TotalPoints != 20 {
		t.Errorf("expected 20 points, got %d", got.TotalPoints)
	}
	if n := len(f.store.Events.OfType(models.EventPointsAwarded)); n != 1 {
		t.Errorf("expected a single award event, got %d", n)
	}
}

func TestRunGivesUpWithConflict(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	f.store.Users.SaveHook = func(*models.User) { f.store.Users.BumpVersion(u.ID.Hex()) }

	_, err := f.engine.AwardPoints(context.Background(), u.ID.Hex(), 5, "x")
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.store.Events.All()) != 0 {
		t.Errorf("expected no committed events")
	}
	if len(f.pub.Events()) != 0 {
		t.Errorf("expected nothing published")
	}
}

func TestRunRollsBackOnError(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	boom := errors.New("boom")

	_, err := f.engine.Run(context.Background(), u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		if err := c.AwardPoints(500, "x"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got := f.reload(t, u.ID)
	if got.TotalPoints != 0 || got.CurrentRankID != nil {
		t.Errorf("partial write leaked: points=%d rank=%q", got.TotalPoints, rankOf(got))
	}
	if len(f.store.Events.All()) != 0 || len(f.pub.Events()) != 0 {
		t.Errorf("events leaked")
	}
}

func TestMissionCompletesOnce(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	ctx := context.Background()

	complete := func(actionTypeID string) {
		t.Helper()
		_, err := f.engine.Run(ctx, u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
			at, _ := c.Org.ActionType(actionTypeID)
			if err := c.AwardPoints(at.Points, "Action completed: "+at.Name); err != nil {
				return err
			}
			return c.CompleteActionType(actionTypeID)
		})
		if err != nil {
			t.Fatalf("complete %s: %v", actionTypeID, err)
		}
	}

	complete("a")
	got := f.reload(t, u.ID)
	p := got.Progress("m")
	if p == nil || p.Completed || len(p.CompletedActionTypeIDs) != 1 {
		t.Fatalf("unexpected progress after A: %+v", p)
	}

	complete("b")
	complete("b")

	got = f.reload(t, u.ID)
	p = got.Progress("m")
	if p == nil || !p.Completed || p.CompletionDate == nil {
		t.Fatalf("mission not completed: %+v", p)
	}
	// 50 + 100 + 100 bonus + 100 for the repeated B
	if got.TotalPoints != 350 {
		t.Errorf("expected 350 points, got %d", got.TotalPoints)
	}

	done := f.store.Events.OfType(models.EventMissionCompleted)
	if len(done) != 1 {
		t.Fatalf("expected one completion, got %d", len(done))
	}
	if done[0].Message != "Mission 'Explorer' completed! Earned badge: 🌌 (+100 bonus points)" {
		t.Errorf("unexpected message %q", done[0].Message)
	}

	bonuses := 0
	for _, e := range f.store.Events.OfType(models.EventPointsAwarded) {
		if e.Reason == "Mission completed: Explorer" {
			bonuses++
		}
	}
	if bonuses != 1 {
		t.Errorf("expected one bonus award, got %d", bonuses)
	}
}

func TestMissionWithoutBonusStillRecordsAward(t *testing.T) {
	f := newFixture(t)
	org, _ := f.store.Orgs.FindByID(context.Background(), f.org.ID.Hex())
	org.MissionTypes["solo"] = models.MissionType{
		ID: "solo", Name: "Fixer", Badge: "⚙️", RequiredActionTypeIDs: []string{"c"}, Active: true,
	}
	f.store.Orgs.Put(org)
	u := f.addUser("E1")

	_, err := f.engine.Run(context.Background(), u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		return c.CompleteActionType("c")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	awards := f.store.Events.OfType(models.EventPointsAwarded)
	if len(awards) != 1 || awards[0].Points != 0 || awards[0].Message != "Awarded 0 points - Mission completed: Fixer" {
		t.Errorf("expected one 0-point award, got %+v", awards)
	}
	if got := f.reload(t, u.ID); got.TotalPoints != 0 {
		t.Errorf("points changed: %d", got.TotalPoints)
	}
	if n := len(f.store.Events.OfType(models.EventMissionCompleted)); n != 1 {
		t.Errorf("expected a completion, got %d", n)
	}
}

func TestInactiveMissionIsIgnored(t *testing.T) {
	f := newFixture(t)
	org, _ := f.store.Orgs.FindByID(context.Background(), f.org.ID.Hex())
	m := org.MissionTypes["m"]
	m.Active = false
	org.MissionTypes["m"] = m
	f.store.Orgs.Put(org)
	u := f.addUser("E1")

	_, err := f.engine.Run(context.Background(), u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		return c.CompleteActionType("a")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.reload(t, u.ID); got.Progress("m") != nil {
		t.Errorf("inactive mission tracked")
	}
	if f.cache.Count() != 0 {
		t.Errorf("unchanged user invalidated the cache")
	}
}

func TestDeactivatedRankIsReassignedNotPromoted(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("E1")
	u.TotalPoints = 300
	lieutenant := "lieutenant"
	u.CurrentRankID = &lieutenant
	f.store.Users.Put(u)

	org, _ := f.store.Orgs.FindByID(context.Background(), f.org.ID.Hex())
	rc := org.RankConfigurations["lieutenant"]
	rc.Active = false
	org.RankConfigurations["lieutenant"] = rc
	f.store.Orgs.Put(org)

	if _, err := f.engine.AwardPoints(context.Background(), u.ID.Hex(), 10, "x"); err != nil {
		t.Fatalf("award: %v", err)
	}
	if got := f.reload(t, u.ID); rankOf(got) != "ensign" {
		t.Errorf("expected ensign after the lieutenant rank was retired, got %q", rankOf(got))
	}
	events := f.store.Events.OfType(models.EventRankPromoted)
	if len(events) != 1 || events[0].Message != "Rank reassigned: Ensign ⭐" {
		t.Errorf("unexpected rank events: %+v", events)
	}
}
