package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/storetest"
	"go-gamifier/pkg/keylock"

	"go.uber.org/zap"
)

func newTestService() (*OrganizationServiceImpl, *storetest.Store) {
	store := storetest.New()
	return &OrganizationServiceImpl{
		Repo:            store.Orgs,
		Events:          store.Events,
		Tx:              store.Tx,
		Logger:          zap.NewNop(),
		Locks:           keylock.New(),
		MaxActionPoints: 1000,
		MaxBonusPoints:  1000,
		WriteRetries:    3,
		Now:             func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) },
	}, store
}

func actionInput(name string, points int) ActionTypeInput {
	return ActionTypeInput{
		Name:             name,
		Points:           points,
		CaptureMethods:   []models.CaptureMethod{models.CaptureUI},
		AllowedReporters: []models.ReporterRole{models.ReporterSelf},
	}
}

func TestApplyDefaultCatalog(t *testing.T) {
	svc, store := newTestService()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}

	org, err := svc.ApplyCatalog(context.Background(), catalog, "seed")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if org.FederationID != "UFP-001" {
		t.Errorf("unexpected federation id %q", org.FederationID)
	}
	if len(org.RankConfigurations) != 8 || len(org.ActionTypes) != 10 || len(org.MissionTypes) != 5 {
		t.Fatalf("unexpected catalog sizes: %d ranks, %d action types, %d missions",
			len(org.RankConfigurations), len(org.ActionTypes), len(org.MissionTypes))
	}

	explorer, ok := findMission(org, "Explorer")
	if !ok || len(explorer.RequiredActionTypeIDs) != 3 || explorer.BonusPoints != 200 {
		t.Fatalf("unexpected Explorer mission: %+v", explorer)
	}
	for _, id := range explorer.RequiredActionTypeIDs {
		if _, ok := org.ActionType(id); !ok {
			t.Errorf("Explorer requires unknown action type %s", id)
		}
	}

	if rank := org.EligibleRank(350); rank == nil || rank.Name != "Lieutenant Junior Grade" {
		t.Errorf("unexpected rank for 350 points: %+v", rank)
	}
	// one event for the organization and one per catalog entry
	if n := len(store.Events.OfType(models.EventConfigurationChanged)); n != 24 {
		t.Errorf("expected 24 configuration events, got %d", n)
	}
}

func findMission(org *models.Organization, name string) (models.MissionType, bool) {
	for _, mt := range org.MissionTypes {
		if mt.Name == name {
			return mt, true
		}
	}
	return models.MissionType{}, false
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader("organization:\n  name: Deep Space Nine\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Organization.FederationID != "DEEP-SPACE-NINE" {
		t.Errorf("unexpected derived federation id %q", c.Organization.FederationID)
	}

	if _, err := LoadCatalog(strings.NewReader("organisation:\n  name: Typo\n")); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("unknown key: expected validation error, got %v", err)
	}
}

func TestCreateOrganizationConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		in   OrganizationInput
		want error
	}{
		{"same name", OrganizationInput{Name: "Starfleet", FederationID: "OTHER"}, errs.ErrConflict},
		{"same federation", OrganizationInput{Name: "Other", FederationID: "UFP"}, errs.ErrConflict},
		{"missing name", OrganizationInput{FederationID: "X"}, errs.ErrValidation},
		{"missing federation", OrganizationInput{Name: "X"}, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrganization(ctx, tt.in, "a"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestActionTypeLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	org, err := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a")
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	orgID := org.ID.Hex()

	at, err := svc.CreateActionType(ctx, orgID, actionInput("Repair", 75), "a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !at.Active || at.ID == "" {
		t.Errorf("unexpected action type: %+v", at)
	}

	if _, err := svc.CreateActionType(ctx, orgID, actionInput(" repair ", 10), "a"); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("case-insensitive duplicate: expected conflict, got %v", err)
	}
	if _, err := svc.CreateActionType(ctx, orgID, actionInput("Too Much", 1001), "a"); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("points cap: expected validation error, got %v", err)
	}
	bad := actionInput("Broken Rule", 10)
	bad.CaptureRule = "allow = "
	if _, err := svc.CreateActionType(ctx, orgID, bad, "a"); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("bad rule: expected validation error, got %v", err)
	}

	updated, err := svc.UpdateActionType(ctx, orgID, at.ID, actionInput("Critical Repair", 80), "a")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Critical Repair" || updated.Points != 80 {
		t.Errorf("unexpected update: %+v", updated)
	}

	if err := svc.DeleteActionType(ctx, orgID, at.ID, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	active, _ := svc.ListActionTypes(ctx, orgID, false)
	all, _ := svc.ListActionTypes(ctx, orgID, true)
	if len(active) != 0 || len(all) != 1 || all[0].Active {
		t.Errorf("soft delete failed: active=%d all=%+v", len(active), all)
	}
	if _, err := svc.GetActionTypeByName(ctx, orgID, "Critical Repair"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("inactive type found by name: %v", err)
	}
}

func TestMissionTypeRequiresKnownActionTypes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	org, _ := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a")
	orgID := org.ID.Hex()
	at, _ := svc.CreateActionType(ctx, orgID, actionInput("Repair", 75), "a")

	_, err := svc.CreateMissionType(ctx, orgID, MissionTypeInput{
		Name: "Engineer", Badge: "⚙️", RequiredActionTypeIDs: []string{"nope"},
	}, "a")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown requirement: expected not found, got %v", err)
	}

	mt, err := svc.CreateMissionType(ctx, orgID, MissionTypeInput{
		Name: "Engineer", Badge: "⚙️", BonusPoints: 50,
		RequiredActionTypeIDs: []string{at.ID, at.ID},
	}, "a")
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	if len(mt.RequiredActionTypeIDs) != 1 {
		t.Errorf("requirements not deduplicated: %v", mt.RequiredActionTypeIDs)
	}

	requiring, err := svc.GetMissionTypesRequiring(ctx, orgID, at.ID)
	if err != nil || len(requiring) != 1 || requiring[0].ID != mt.ID {
		t.Errorf("unexpected missions requiring %s: %+v (%v)", at.ID, requiring, err)
	}
}

func TestRankThresholdsAreUnique(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	org, _ := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a")
	orgID := org.ID.Hex()

	if _, err := svc.CreateRank(ctx, orgID, RankInput{Name: "Ensign", PointsThreshold: 100, Insignia: "⭐", Order: 1}, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateRank(ctx, orgID, RankInput{Name: "Other", PointsThreshold: 100, Insignia: "x", Order: 2}, "a")
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	next, err := svc.GetNextRank(ctx, orgID, 50)
	if err != nil || next == nil || next.Name != "Ensign" {
		t.Errorf("unexpected next rank: %+v (%v)", next, err)
	}
	eligible, err := svc.GetEligibleRank(ctx, orgID, 50)
	if err != nil || eligible != nil {
		t.Errorf("expected no eligible rank below the lowest threshold, got %+v", eligible)
	}
}

func TestConcurrentCatalogEditsAreNotLost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	org, _ := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a")
	orgID := org.ID.Hex()

	const writers = 12
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.CreateActionType(ctx, orgID, actionInput(fmt.Sprintf("Action %d", i), 10), "a"); err != nil {
				t.Errorf("create %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.GetOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.ActionTypes) != writers {
		t.Errorf("expected %d action types, got %d", writers, len(got.ActionTypes))
	}
	if got.Version != writers {
		t.Errorf("expected version %d, got %d", writers, got.Version)
	}
}

func TestApplyCatalogIsAllOrNothing(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	broken := Catalog{
		Organization: OrganizationInput{Name: "Deep Space Nine", FederationID: "DS9"},
		Ranks:        []RankInput{{Name: "Ensign", PointsThreshold: 100, Insignia: "⭐", Order: 1}},
		ActionTypes:  []ActionTypeInput{actionInput("Station Patrol", 25)},
		MissionTypes: []MissionTypeInput{{
			Name:                    "Wormhole Survey",
			Badge:                   "🌀",
			BonusPoints:             50,
			RequiredActionTypeNames: []string{"Station Patrol", "Gamma Quadrant Scan"},
		}},
	}
	if _, err := svc.ApplyCatalog(ctx, broken, "seed"); err == nil {
		t.Fatal("expected the unknown required action type to be rejected")
	}
	if _, err := store.Orgs.FindByFederationID(ctx, "DS9"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("a rejected catalog left an organization behind: %v", err)
	}
	if n := len(store.Events.OfType(models.EventConfigurationChanged)); n != 0 {
		t.Errorf("a rejected catalog wrote %d events", n)
	}

	broken.MissionTypes[0].RequiredActionTypeNames = []string{"Station Patrol"}
	org, err := svc.ApplyCatalog(ctx, broken, "seed")
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if len(org.RankConfigurations) != 1 || len(org.ActionTypes) != 1 || len(org.MissionTypes) != 1 {
		t.Errorf("unexpected catalog sizes after re-apply: %+v", org)
	}
	if n := len(store.Events.OfType(models.EventConfigurationChanged)); n != 4 {
		t.Errorf("expected 4 configuration events, got %d", n)
	}
}

func TestCatalogEditsInvalidateStandings(t *testing.T) {
	svc, _ := newTestService()
	cache := &storetest.Invalidations{}
	svc.Cache = cache
	ctx := context.Background()
	org, _ := svc.CreateOrganization(ctx, OrganizationInput{Name: "Starfleet", FederationID: "UFP"}, "a")
	orgID := org.ID.Hex()

	rank, err := svc.CreateRank(ctx, orgID, RankInput{Name: "Ensign", PointsThreshold: 100, Insignia: "⭐", Order: 1}, "a")
	if err != nil {
		t.Fatalf("create rank: %v", err)
	}
	if cache.Count() != 1 {
		t.Errorf("expected one invalidation after a rank is created, got %d", cache.Count())
	}

	if _, err := svc.CreateRank(ctx, orgID, RankInput{Name: "Dup", PointsThreshold: 100, Insignia: "x", Order: 2}, "a"); err == nil {
		t.Fatal("expected threshold conflict")
	}
	if cache.Count() != 1 {
		t.Errorf("a rejected edit should not invalidate, got %d", cache.Count())
	}

	if err := svc.DeleteRank(ctx, orgID, rank.ID, "a"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if cache.Count() != 2 {
		t.Errorf("expected an invalidation after deactivation, got %d", cache.Count())
	}
}
