package scoring

import (
	"context"
	"errors"
	"testing"

	"go-gamifier/internal/common/errs"
)

func TestRankInfo(t *testing.T) {
	f := newFixture(t)
	svc := &ScoringServiceImpl{Engine: f.engine, Users: f.store.Users, Orgs: f.store.Orgs}
	u := f.addUser("E1")
	ctx := context.Background()

	info, err := svc.RankInfo(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("rank info: %v", err)
	}
	if info.CurrentRank != nil {
		t.Errorf("new user should be unranked, got %s", info.CurrentRank.Name)
	}
	if info.NextRank == nil || info.NextRank.Name != "Ensign" || info.PointsToNextRank != 100 {
		t.Errorf("unexpected next rank: %+v", info)
	}

	if _, err := svc.AwardPoints(ctx, u.ID.Hex(), 120, "x"); err != nil {
		t.Fatalf("award: %v", err)
	}
	info, err = svc.RankInfo(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("rank info: %v", err)
	}
	if info.CurrentRank == nil || info.CurrentRank.Name != "Ensign" {
		t.Fatalf("expected Ensign, got %+v", info.CurrentRank)
	}
	if info.NextRank == nil || info.NextRank.Name != "Lieutenant" || info.PointsToNextRank != 180 {
		t.Errorf("unexpected next rank: %+v", info)
	}

	if _, err := svc.AwardPoints(ctx, u.ID.Hex(), 1000, "x"); err != nil {
		t.Fatalf("award: %v", err)
	}
	info, _ = svc.RankInfo(ctx, u.ID.Hex())
	if info.NextRank != nil || info.PointsToNextRank != 0 {
		t.Errorf("top rank should have no next rank: %+v", info)
	}
}

func TestAvailableRanksAreOrderedByThreshold(t *testing.T) {
	f := newFixture(t)
	svc := &ScoringServiceImpl{Engine: f.engine, Users: f.store.Users, Orgs: f.store.Orgs}

	ranks, err := svc.AvailableRanks(context.Background(), f.org.ID.Hex())
	if err != nil {
		t.Fatalf("ranks: %v", err)
	}
	want := []string{"Cadet", "Ensign", "Lieutenant"}
	if len(ranks) != len(want) {
		t.Fatalf("expected %d ranks, got %d", len(want), len(ranks))
	}
	for i, name := range want {
		if ranks[i].Name != name {
			t.Errorf("rank %d: expected %s, got %s", i, name, ranks[i].Name)
		}
	}
}

func TestMissionDetailAndBadges(t *testing.T) {
	f := newFixture(t)
	svc := &ScoringServiceImpl{Engine: f.engine, Users: f.store.Users, Orgs: f.store.Orgs}
	u := f.addUser("E1")
	ctx := context.Background()

	_, err := f.engine.Run(ctx, u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		return c.CompleteActionType("a")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	detail, err := svc.MissionDetail(ctx, u.ID.Hex(), "m")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.CompletedCount != 1 || detail.TotalCount != 2 || detail.Completed {
		t.Errorf("unexpected summary: %+v", detail.MissionSummary)
	}
	if len(detail.Actions) != 2 || !detail.Actions[0].Completed || detail.Actions[1].Completed {
		t.Errorf("unexpected actions: %+v", detail.Actions)
	}

	badges, err := svc.Badges(ctx, u.ID.Hex())
	if err != nil || len(badges) != 0 {
		t.Fatalf("expected no badges, got %v (%v)", badges, err)
	}

	_, err = f.engine.Run(ctx, u.ID.Hex(), func(ctx context.Context, c *Cascade) error {
		return c.CompleteActionType("b")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	badges, err = svc.Badges(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	if len(badges) != 1 || badges[0].MissionName != "Explorer" || badges[0].EarnedAt == nil {
		t.Errorf("unexpected badges: %+v", badges)
	}

	missions, err := svc.MissionProgress(ctx, u.ID.Hex())
	if err != nil || len(missions) != 1 || !missions[0].Completed {
		t.Errorf("unexpected missions: %+v (%v)", missions, err)
	}

	if _, err := svc.MissionDetail(ctx, u.ID.Hex(), "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
