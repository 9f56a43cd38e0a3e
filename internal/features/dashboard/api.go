package dashboard

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	controller *DashboardController
	config     *config.Config
}

func NewDashboardApi(controller *DashboardController, config *config.Config) api.Route {
	return &DashboardApi{
		controller: controller,
		config:     config,
	}
}

func (h *DashboardApi) Setup(app *fiber.App) {
	group := app.Group("/api/dashboard", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/", h.controller.MyDashboard)
	group.Get("/:userId", h.controller.UserDashboard)
}
