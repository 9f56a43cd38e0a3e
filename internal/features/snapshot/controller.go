package snapshot

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type SnapshotController struct {
	Service  SnapshotService
	Identity auth.Identity
}

func NewSnapshotController(service SnapshotService, identity auth.Identity) *SnapshotController {
	return &SnapshotController{Service: service, Identity: identity}
}

// ListSnapshots godoc
// @Summary      List leaderboard snapshots
// @Tags         snapshots
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Success      200  {array} Snapshot
// @Router       /api/snapshots/{orgId} [get]
func (ctrl *SnapshotController) ListSnapshots(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.List(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// GetSnapshot godoc
// @Summary      Get a monthly snapshot
// @Tags         snapshots
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        month path string true "Month (YYYY-MM)"
// @Success      200  {object} Snapshot
// @Failure      404  {object} map[string]string
// @Router       /api/snapshots/{orgId}/{month} [get]
func (ctrl *SnapshotController) GetSnapshot(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.Get(c.UserContext(), orgID, c.Params("month"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// TakeSnapshot godoc
// @Summary      Take a monthly snapshot
// @Tags         snapshots
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body TakeRequest true "Month"
// @Success      201  {object} Snapshot
// @Router       /api/snapshots/{orgId} [post]
func (ctrl *SnapshotController) TakeSnapshot(c *fiber.Ctx) error {
	var req TakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.Take(c.UserContext(), orgID, req.Month)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
