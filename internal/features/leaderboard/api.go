package leaderboard

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardApi struct {
	controller *LeaderboardController
	config     *config.Config
}

func NewLeaderboardApi(controller *LeaderboardController, config *config.Config) api.Route {
	return &LeaderboardApi{
		controller: controller,
		config:     config,
	}
}

func (h *LeaderboardApi) Setup(app *fiber.App) {
	boards := app.Group("/api/leaderboards", middleware.AuthMiddleware(h.config.SkipAuth))

	boards.Get("/:orgId", h.controller.AllTime)
	boards.Get("/:orgId/statistics", h.controller.Statistics)
	boards.Get("/:orgId/monthly", h.controller.Monthly)
	boards.Get("/:orgId/departments/:department", h.controller.Department)
	boards.Get("/:orgId/users/:userId", h.controller.UserPosition)
}
