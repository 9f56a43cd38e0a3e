package event

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EventApi struct {
	controller *EventController
	config     *config.Config
}

func NewEventApi(controller *EventController, config *config.Config) api.Route {
	return &EventApi{
		controller: controller,
		config:     config,
	}
}

func (h *EventApi) Setup(app *fiber.App) {
	events := app.Group("/api/events", middleware.AuthMiddleware(h.config.SkipAuth))

	events.Get("/feed", h.controller.Feed)
	events.Get("/users/:userId", h.controller.UserEvents)
	events.Get("/organizations/:orgId", h.controller.Query)
	events.Get("/organizations/:orgId/statistics", h.controller.Statistics)
}
