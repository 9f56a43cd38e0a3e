package dashboard

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	Service  DashboardService
	Identity auth.Identity
}

func NewDashboardController(service DashboardService, identity auth.Identity) *DashboardController {
	return &DashboardController{Service: service, Identity: identity}
}

// MyDashboard godoc
// @Summary      Current user's dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object} Dashboard
// @Router       /api/dashboard [get]
func (ctrl *DashboardController) MyDashboard(c *fiber.Ctx) error {
	userID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// UserDashboard godoc
// @Summary      Dashboard of a user
// @Tags         dashboard
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200  {object} Dashboard
// @Router       /api/dashboard/{userId} [get]
func (ctrl *DashboardController) UserDashboard(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}
