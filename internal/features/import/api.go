package import_feature

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ImportApi struct {
	ImportController *ImportController
	Config           *config.Config
}

func NewImportApi(importController *ImportController, config *config.Config) api.Route {
	return &ImportApi{
		ImportController: importController,
		Config:           config,
	}
}

func (h *ImportApi) Setup(app *fiber.App) {
	group := app.Group("/api/import", middleware.AuthMiddleware(h.Config.SkipAuth))

	group.Post("/:orgId/users", h.ImportController.ImportUsers)
	group.Post("/:orgId/actions", h.ImportController.ImportActions)
}
