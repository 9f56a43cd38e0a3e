package leaderboard

import (
	"time"

	"go-gamifier/internal/common/api"
	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardController struct {
	Service  LeaderboardService
	Identity auth.Identity
}

func NewLeaderboardController(service LeaderboardService, identity auth.Identity) *LeaderboardController {
	return &LeaderboardController{Service: service, Identity: identity}
}

// AllTime godoc
// @Summary      All-time leaderboard
// @Tags         leaderboards
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} Page
// @Router       /api/leaderboards/{orgId} [get]
func (ctrl *LeaderboardController) AllTime(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 10)
	res, err := ctrl.Service.AllTime(c.UserContext(), orgID, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// UserPosition godoc
// @Summary      Position of a user
// @Tags         leaderboards
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        userId path string true "User ID"
// @Success      200  {object} UserPosition
// @Router       /api/leaderboards/{orgId}/users/{userId} [get]
func (ctrl *LeaderboardController) UserPosition(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.UserPosition(c.UserContext(), orgID, c.Params("userId"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Statistics godoc
// @Summary      Leaderboard statistics
// @Tags         leaderboards
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Success      200  {object} Statistics
// @Router       /api/leaderboards/{orgId}/statistics [get]
func (ctrl *LeaderboardController) Statistics(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.Statistics(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Monthly godoc
// @Summary      Monthly leaderboard
// @Tags         leaderboards
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        month query string false "Month as YYYY-MM, default current"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} Page
// @Router       /api/leaderboards/{orgId}/monthly [get]
func (ctrl *LeaderboardController) Monthly(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	month := time.Now().UTC()
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			return api.Error(c, errs.Validation("Invalid month: %s", m))
		}
		month = parsed
	}
	page, limit := api.Page(c, 10)
	res, err := ctrl.Service.Monthly(c.UserContext(), orgID, month, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Department godoc
// @Summary      Department leaderboard
// @Tags         leaderboards
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        department path string true "Department"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} Page
// @Router       /api/leaderboards/{orgId}/departments/{department} [get]
func (ctrl *LeaderboardController) Department(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 10)
	res, err := ctrl.Service.Department(c.UserContext(), orgID, c.Params("department"), page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}
