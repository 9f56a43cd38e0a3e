package organization

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/features/auth"
	"go-gamifier/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrganizationApi struct {
	controller *OrganizationController
	identity   auth.Identity
	config     *config.Config
}

func NewOrganizationApi(controller *OrganizationController, identity auth.Identity, config *config.Config) api.Route {
	return &OrganizationApi{
		controller: controller,
		identity:   identity,
		config:     config,
	}
}

// Setup registers organization and catalog routes. Reads are open to members,
// writes need the admin role in the organization.
func (h *OrganizationApi) Setup(app *fiber.App) {
	orgs := app.Group("/api/organizations", middleware.AuthMiddleware(h.config.SkipAuth))
	admin := middleware.RequireOrgAdmin(h.identity, "orgId")

	orgs.Get("/", h.controller.ListOrganizations)
	orgs.Post("/", admin, h.controller.CreateOrganization)
	orgs.Get("/:orgId", h.controller.GetOrganization)
	orgs.Put("/:orgId", admin, h.controller.UpdateOrganization)

	orgs.Get("/:orgId/action-types", h.controller.ListActionTypes)
	orgs.Post("/:orgId/action-types", admin, h.controller.CreateActionType)
	orgs.Get("/:orgId/action-types/:id", h.controller.GetActionType)
	orgs.Put("/:orgId/action-types/:id", admin, h.controller.UpdateActionType)
	orgs.Delete("/:orgId/action-types/:id", admin, h.controller.DeleteActionType)

	orgs.Get("/:orgId/mission-types", h.controller.ListMissionTypes)
	orgs.Post("/:orgId/mission-types", admin, h.controller.CreateMissionType)
	orgs.Get("/:orgId/mission-types/:id", h.controller.GetMissionType)
	orgs.Put("/:orgId/mission-types/:id", admin, h.controller.UpdateMissionType)
	orgs.Delete("/:orgId/mission-types/:id", admin, h.controller.DeleteMissionType)

	orgs.Get("/:orgId/ranks", h.controller.ListRanks)
	orgs.Get("/:orgId/ranks/eligible", h.controller.GetEligibleRank)
	orgs.Post("/:orgId/ranks", admin, h.controller.CreateRank)
	orgs.Put("/:orgId/ranks/:id", admin, h.controller.UpdateRank)
	orgs.Delete("/:orgId/ranks/:id", admin, h.controller.DeleteRank)
}
