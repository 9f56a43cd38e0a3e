package scoring

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScoringApi struct {
	controller *ScoringController
	config     *config.Config
}

func NewScoringApi(controller *ScoringController, config *config.Config) api.Route {
	return &ScoringApi{
		controller: controller,
		config:     config,
	}
}

func (h *ScoringApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	points := app.Group("/api/points", auth)
	points.Post("/award", h.controller.AwardPoints)
	points.Get("/:userId", h.controller.RankInfo)

	app.Get("/api/ranks/:orgId", auth, h.controller.AvailableRanks)

	missions := app.Group("/api/missions", auth)
	missions.Get("/:userId", h.controller.MissionProgress)
	missions.Get("/:userId/badges", h.controller.Badges)
	missions.Get("/:userId/:missionId", h.controller.MissionDetail)
}
