package system

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"
	"go-gamifier/internal/features/event"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const orgLocal = "ws_organization_id"

// WebSocketController streams committed events of the caller's organization.
type WebSocketController struct {
	Events   event.EventService
	Identity auth.Identity
	Logger   *zap.Logger
}

func NewWebSocketController(events event.EventService, identity auth.Identity, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		Events:   events,
		Identity: identity,
		Logger:   logger,
	}
}

// Upgrade resolves the caller's organization before the connection is upgraded.
func (h *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID, err := h.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	orgID, err := h.Identity.OrganizationOf(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	c.Locals(orgLocal, orgID)
	return c.Next()
}

// HandleWebSocket godoc
// @Summary      Live event stream
// @Description  Streams events of the caller's organization as JSON messages
// @Tags         websocket
// @Router       /api/ws/events [get]
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	orgID, _ := c.Locals(orgLocal).(string)
	events, cancel := h.Events.Subscribe(orgID)
	defer cancel()

	// The reader only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				h.Logger.Debug("Event stream write failed",
					zap.String("organizationId", orgID), zap.Error(err))
				return
			}
		}
	}
}
