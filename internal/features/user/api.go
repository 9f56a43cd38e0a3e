package user

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) api.Route {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	orgUsers := app.Group("/api/organizations/:orgId/users", auth)
	orgUsers.Get("/", h.controller.ListUsers)
	orgUsers.Post("/", h.controller.CreateUser)

	users := app.Group("/api/users", auth)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id", h.controller.UpdateProfile)
	users.Get("/:id/reports", h.controller.DirectReports)
}
