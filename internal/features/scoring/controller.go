package scoring

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type ScoringController struct {
	Service  ScoringService
	Identity auth.Identity
}

func NewScoringController(service ScoringService, identity auth.Identity) *ScoringController {
	return &ScoringController{Service: service, Identity: identity}
}

// AwardPoints godoc
// @Summary      Award points
// @Description  Grant points to a user directly (admin only)
// @Tags         points
// @Accept       json
// @Produce      json
// @Param        input body AwardRequest true "Award"
// @Success      200  {object} models.User
// @Failure      400  {object} map[string]string
// @Failure      403  {object} map[string]string
// @Router       /api/points/award [post]
func (ctrl *ScoringController) AwardPoints(c *fiber.Ctx) error {
	var req AwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	orgID, err := ctrl.Identity.OrganizationOf(c.UserContext(), req.UserID)
	if err != nil {
		return api.Error(c, err)
	}
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	user, err := ctrl.Service.AwardPoints(c.UserContext(), req.UserID, req.Amount, req.Reason)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(user)
}

// RankInfo godoc
// @Summary      Points and rank of a user
// @Tags         points
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200  {object} RankInfo
// @Router       /api/points/{userId} [get]
func (ctrl *ScoringController) RankInfo(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	info, err := ctrl.Service.RankInfo(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(info)
}

// AvailableRanks godoc
// @Summary      Ranks of an organization
// @Tags         ranks
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Success      200  {array} models.RankConfiguration
// @Router       /api/ranks/{orgId} [get]
func (ctrl *ScoringController) AvailableRanks(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	ranks, err := ctrl.Service.AvailableRanks(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(ranks)
}

// MissionProgress godoc
// @Summary      Mission progress of a user
// @Tags         missions
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200  {array} MissionSummary
// @Router       /api/missions/{userId} [get]
func (ctrl *ScoringController) MissionProgress(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.MissionProgress(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// MissionDetail godoc
// @Summary      Progress on one mission
// @Tags         missions
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        missionId path string true "Mission type ID"
// @Success      200  {object} MissionDetail
// @Router       /api/missions/{userId}/{missionId} [get]
func (ctrl *ScoringController) MissionDetail(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.MissionDetail(c.UserContext(), userID, c.Params("missionId"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Badges godoc
// @Summary      Earned badges
// @Tags         missions
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200  {array} Badge
// @Router       /api/missions/{userId}/badges [get]
func (ctrl *ScoringController) Badges(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.Badges(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}
