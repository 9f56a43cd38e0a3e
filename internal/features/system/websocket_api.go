package system

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
	Config     *config.Config
}

func NewWebSocketApi(controller *WebSocketController, cfg *config.Config) api.Route {
	return &WebSocketApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws/events",
		middleware.AuthMiddleware(h.Config.SkipAuth),
		h.Controller.Upgrade,
		websocket.New(h.Controller.HandleWebSocket))
}
