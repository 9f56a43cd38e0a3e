package snapshot

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SnapshotApi struct {
	controller *SnapshotController
	config     *config.Config
}

func NewSnapshotApi(controller *SnapshotController, config *config.Config) api.Route {
	return &SnapshotApi{
		controller: controller,
		config:     config,
	}
}

func (h *SnapshotApi) Setup(app *fiber.App) {
	snapshots := app.Group("/api/snapshots", middleware.AuthMiddleware(h.config.SkipAuth))

	snapshots.Get("/:orgId", h.controller.ListSnapshots)
	snapshots.Post("/:orgId", h.controller.TakeSnapshot)
	snapshots.Get("/:orgId/:month", h.controller.GetSnapshot)
}
