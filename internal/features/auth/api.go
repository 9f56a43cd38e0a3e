package auth

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) api.Route {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/token", h.controller.Login)
	app.Get("/api/auth/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Me)
}
