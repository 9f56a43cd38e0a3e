package action

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ActionApi struct {
	controller *ActionController
	config     *config.Config
}

func NewActionApi(controller *ActionController, config *config.Config) api.Route {
	return &ActionApi{
		controller: controller,
		config:     config,
	}
}

func (h *ActionApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	actions := app.Group("/api/actions", auth)
	actions.Post("/", h.controller.CaptureAction)
	actions.Get("/pending", h.controller.PendingApprovals)
	actions.Get("/users/:userId", h.controller.History)
	actions.Get("/:id", h.controller.GetAction)
	actions.Post("/:id/approve", h.controller.ApproveAction)
	actions.Post("/:id/reject", h.controller.RejectAction)

	app.Get("/api/organizations/:orgId/actions/statistics", auth, h.controller.Statistics)
}
