package scoring

import (
	"fmt"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cascade applies scoring mutations to an in-memory user inside one unit of work.
// Nothing it does is visible until Engine.Run commits.
type Cascade struct {
	User *models.User
	Org  *models.Organization

	now    time.Time
	dirty  bool
	events []models.Event
}

func newCascade(user *models.User, org *models.Organization, now time.Time) *Cascade {
	if user.MissionProgress == nil {
		user.MissionProgress = map[string]*models.MissionProgress{}
	}
	return &Cascade{User: user, Org: org, now: now}
}

func (c *Cascade) Now() time.Time {
	return c.now
}

func (c *Cascade) Events() []models.Event {
	return c.events
}

// Emit records an event for the cascade's user.
func (c *Cascade) Emit(typ models.EventType, message string, points int, reason, refID string) {
	c.events = append(c.events, models.Event{
		ID:             primitive.NewObjectID(),
		OrganizationID: c.User.OrganizationID,
		UserID:         c.User.ID.Hex(),
		Type:           typ,
		Message:        message,
		Points:         points,
		Reason:         reason,
		RefID:          refID,
		Timestamp:      c.now,
	})
}

func (c *Cascade) AwardPoints(amount int, reason string) error {
	if amount < 0 {
		return errs.Validation("Points amount cannot be negative: %d", amount)
	}
	c.User.TotalPoints += amount
	c.dirty = true
	c.Emit(models.EventPointsAwarded, fmt.Sprintf("Awarded %d points - %s", amount, reason), amount, reason, "")
	c.updateRank()
	return nil
}

// updateRank only moves a user up. A rank that was removed or deactivated is replaced
// by whatever the points now qualify for, which is reported as a reassignment unless
// it sits above the old one.
func (c *Cascade) updateRank() {
	eligible := c.Org.EligibleRank(c.User.TotalPoints)
	if eligible == nil {
		return
	}
	promoted := true
	if id := c.User.CurrentRankID; id != nil {
		if *id == eligible.ID {
			return
		}
		current, ok := c.Org.RankConfiguration(*id)
		if ok && current.Active && eligible.PointsThreshold <= current.PointsThreshold {
			return
		}
		promoted = ok && eligible.PointsThreshold > current.PointsThreshold
	}

	rankID := eligible.ID
	c.User.CurrentRankID = &rankID
	c.dirty = true
	format := "Promoted to rank: %s %s"
	if !promoted {
		format = "Rank reassigned: %s %s"
	}
	c.Emit(models.EventRankPromoted, fmt.Sprintf(format, eligible.Name, eligible.Insignia), 0, "", eligible.ID)
}

// CompleteActionType records a completed action type against every active mission that
// requires it, completing and rewarding missions whose requirements are now covered.
func (c *Cascade) CompleteActionType(actionTypeID string) error {
	for _, mt := range c.Org.MissionTypesRequiring(actionTypeID) {
		progress := c.User.Progress(mt.ID)
		if progress == nil {
			progress = &models.MissionProgress{
				MissionTypeID:          mt.ID,
				CompletedActionTypeIDs: []string{},
			}
			c.User.MissionProgress[mt.ID] = progress
		}
		if progress.Completed {
			continue
		}
		if !progress.HasCompleted(actionTypeID) {
			progress.CompletedActionTypeIDs = append(progress.CompletedActionTypeIDs, actionTypeID)
		}
		c.dirty = true

		if len(mt.RequiredActionTypeIDs) == 0 || !progress.Covers(mt.RequiredActionTypeIDs) {
			continue
		}

		completedAt := c.now
		progress.Completed = true
		progress.CompletionDate = &completedAt
		if err := c.AwardPoints(mt.BonusPoints, "Mission completed: "+mt.Name); err != nil {
			return err
		}
		c.Emit(models.EventMissionCompleted,
			fmt.Sprintf("Mission '%s' completed! Earned badge: %s (+%d bonus points)", mt.Name, mt.Badge, mt.BonusPoints),
			mt.BonusPoints, "", mt.ID)
	}
	return nil
}
