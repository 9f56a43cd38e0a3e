package system

import (
	"context"
	"time"

	"go-gamifier/internal/common/api"
	"go-gamifier/internal/database"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	mongodb *database.MongodbDB
}

func NewHealthApi(mongodb *database.MongodbDB) api.Route {
	return &HealthApi{mongodb: mongodb}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.Health)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object} map[string]string
// @Failure      503  {object} map[string]string
// @Router       /health [get]
func (h *HealthApi) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.mongodb.Client.Ping(ctx, nil); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
