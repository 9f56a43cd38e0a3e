package scoring

import (
	"context"
	"sort"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
)

type ScoringService interface {
	AwardPoints(ctx context.Context, userID string, amount int, reason string) (*models.User, error)
	RankInfo(ctx context.Context, userID string) (*RankInfo, error)
	AvailableRanks(ctx context.Context, organizationID string) ([]models.RankConfiguration, error)

	MissionProgress(ctx context.Context, userID string) ([]MissionSummary, error)
	MissionDetail(ctx context.Context, userID, missionTypeID string) (*MissionDetail, error)
	Badges(ctx context.Context, userID string) ([]Badge, error)
}

type ScoringServiceImpl struct {
	Engine *Engine
	Users  UserLoader
	Orgs   OrganizationLoader
}

func NewScoringService(engine *Engine, users UserLoader, orgs OrganizationLoader) ScoringService {
	return &ScoringServiceImpl{Engine: engine, Users: users, Orgs: orgs}
}

func (s *ScoringServiceImpl) AwardPoints(ctx context.Context, userID string, amount int, reason string) (*models.User, error) {
	return s.Engine.AwardPoints(ctx, userID, amount, reason)
}

func (s *ScoringServiceImpl) RankInfo(ctx context.Context, userID string) (*RankInfo, error) {
	user, org, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildRankInfo(user, org), nil
}

// BuildRankInfo resolves the user's rank against the catalog. A current rank id that
// no longer exists is reported as no rank.
func BuildRankInfo(user *models.User, org *models.Organization) *RankInfo {
	info := &RankInfo{UserID: user.ID.Hex(), TotalPoints: user.TotalPoints}
	if user.CurrentRankID != nil {
		if rc, ok := org.RankConfiguration(*user.CurrentRankID); ok {
			info.CurrentRank = &rc
		}
	}
	if next := org.NextRank(user.TotalPoints); next != nil {
		info.NextRank = next
		info.PointsToNextRank = next.PointsThreshold - user.TotalPoints
	}
	return info
}

func (s *ScoringServiceImpl) AvailableRanks(ctx context.Context, organizationID string) ([]models.RankConfiguration, error) {
	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return org.ActiveRanks(), nil
}

func (s *ScoringServiceImpl) MissionProgress(ctx context.Context, userID string) ([]MissionSummary, error) {
	user, org, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions := org.ActiveMissionTypes()
	out := make([]MissionSummary, 0, len(missions))
	for _, mt := range missions {
		out = append(out, summarize(user, mt))
	}
	return out, nil
}

func (s *ScoringServiceImpl) MissionDetail(ctx context.Context, userID, missionTypeID string) (*MissionDetail, error) {
	user, org, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	mt, ok := org.MissionType(missionTypeID)
	if !ok {
		return nil, errs.NotFound("Mission type not found: %s", missionTypeID)
	}

	progress := user.Progress(mt.ID)
	detail := &MissionDetail{
		MissionSummary: summarize(user, mt),
		Actions:        make([]MissionActionProgress, 0, len(mt.RequiredActionTypeIDs)),
	}
	for _, id := range mt.RequiredActionTypeIDs {
		item := MissionActionProgress{ActionTypeID: id}
		if at, ok := org.ActionType(id); ok {
			item.Name = at.Name
			item.Points = at.Points
		}
		item.Completed = progress != nil && progress.HasCompleted(id)
		detail.Actions = append(detail.Actions, item)
	}
	return detail, nil
}

// Badges lists completed missions, oldest first.
func (s *ScoringServiceImpl) Badges(ctx context.Context, userID string) ([]Badge, error) {
	user, org, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := []Badge{}
	for id, p := range user.MissionProgress {
		if p == nil || !p.Completed {
			continue
		}
		mt, ok := org.MissionType(id)
		if !ok {
			continue
		}
		badges = append(badges, Badge{
			MissionTypeID: id,
			MissionName:   mt.Name,
			Badge:         mt.Badge,
			EarnedAt:      p.CompletionDate,
		})
	}
	sort.Slice(badges, func(i, j int) bool {
		a, b := badges[i].EarnedAt, badges[j].EarnedAt
		if a == nil || b == nil || a.Equal(*b) {
			return badges[i].MissionName < badges[j].MissionName
		}
		return a.Before(*b)
	})
	return badges, nil
}

func (s *ScoringServiceImpl) load(ctx context.Context, userID string) (*models.User, *models.Organization, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	org, err := s.Orgs.FindByID(ctx, user.OrganizationID.Hex())
	if err != nil {
		return nil, nil, err
	}
	return user, org, nil
}

// Counts only action types still required, so edits to a mission never overcount.
func summarize(user *models.User, mt models.MissionType) MissionSummary {
	sum := MissionSummary{
		MissionTypeID: mt.ID,
		Name:          mt.Name,
		Description:   mt.Description,
		Badge:         mt.Badge,
		Category:      mt.Category,
		TotalCount:    len(mt.RequiredActionTypeIDs),
		BonusPoints:   mt.BonusPoints,
	}
	if p := user.Progress(mt.ID); p != nil {
		for _, id := range mt.RequiredActionTypeIDs {
			if p.HasCompleted(id) {
				sum.CompletedCount++
			}
		}
		sum.Completed = p.Completed
		sum.CompletionDate = p.CompletionDate
	}
	return sum
}
