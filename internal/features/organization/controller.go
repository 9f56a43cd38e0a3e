package organization

import (
	"strconv"

	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type OrganizationController struct {
	Service  OrganizationService
	Identity auth.Identity
}

func NewOrganizationController(service OrganizationService, identity auth.Identity) *OrganizationController {
	return &OrganizationController{Service: service, Identity: identity}
}

// CreateOrganization godoc
// @Summary      Create organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        input body OrganizationInput true "Organization"
// @Success      201  {object} models.Organization
// @Failure      400  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Router       /api/organizations [post]
func (ctrl *OrganizationController) CreateOrganization(c *fiber.Ctx) error {
	var in OrganizationInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	org, err := ctrl.Service.CreateOrganization(c.UserContext(), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(org)
}

// ListOrganizations godoc
// @Summary      List organizations
// @Tags         organizations
// @Produce      json
// @Param        active query bool false "Only active organizations"
// @Success      200  {array} models.Organization
// @Router       /api/organizations [get]
func (ctrl *OrganizationController) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := ctrl.Service.ListOrganizations(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(orgs)
}

// GetOrganization godoc
// @Summary      Get organization
// @Tags         organizations
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Success      200  {object} models.Organization
// @Failure      404  {object} map[string]string
// @Router       /api/organizations/{orgId} [get]
func (ctrl *OrganizationController) GetOrganization(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	org, err := ctrl.Service.GetOrganization(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(org)
}

// UpdateOrganization godoc
// @Summary      Update organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body OrganizationInput true "Organization"
// @Success      200  {object} models.Organization
// @Router       /api/organizations/{orgId} [put]
func (ctrl *OrganizationController) UpdateOrganization(c *fiber.Ctx) error {
	var in OrganizationInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	org, err := ctrl.Service.UpdateOrganization(c.UserContext(), c.Params("orgId"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(org)
}

// ListActionTypes godoc
// @Summary      List action types
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        all query bool false "Include inactive"
// @Success      200  {array} models.ActionType
// @Router       /api/organizations/{orgId}/action-types [get]
func (ctrl *OrganizationController) ListActionTypes(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	items, err := ctrl.Service.ListActionTypes(c.UserContext(), orgID, c.QueryBool("all", false))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(items)
}

// GetActionType godoc
// @Summary      Get action type
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Action type ID"
// @Success      200  {object} models.ActionType
// @Router       /api/organizations/{orgId}/action-types/{id} [get]
func (ctrl *OrganizationController) GetActionType(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.GetActionType(c.UserContext(), orgID, c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

// CreateActionType godoc
// @Summary      Create action type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body ActionTypeInput true "Action type"
// @Success      201  {object} models.ActionType
// @Router       /api/organizations/{orgId}/action-types [post]
func (ctrl *OrganizationController) CreateActionType(c *fiber.Ctx) error {
	var in ActionTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.CreateActionType(c.UserContext(), c.Params("orgId"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateActionType godoc
// @Summary      Update action type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Action type ID"
// @Param        input body ActionTypeInput true "Action type"
// @Success      200  {object} models.ActionType
// @Router       /api/organizations/{orgId}/action-types/{id} [put]
func (ctrl *OrganizationController) UpdateActionType(c *fiber.Ctx) error {
	var in ActionTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.UpdateActionType(c.UserContext(), c.Params("orgId"), c.Params("id"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

// DeleteActionType godoc
// @Summary      Deactivate action type
// @Tags         catalog
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Action type ID"
// @Success      204
// @Router       /api/organizations/{orgId}/action-types/{id} [delete]
func (ctrl *OrganizationController) DeleteActionType(c *fiber.Ctx) error {
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	if err := ctrl.Service.DeleteActionType(c.UserContext(), c.Params("orgId"), c.Params("id"), actorID); err != nil {
		return api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMissionTypes godoc
// @Summary      List mission types
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        all query bool false "Include inactive"
// @Param        actionTypeId query string false "Only missions requiring this action type"
// @Success      200  {array} models.MissionType
// @Router       /api/organizations/{orgId}/mission-types [get]
func (ctrl *OrganizationController) ListMissionTypes(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	if actionTypeID := c.Query("actionTypeId"); actionTypeID != "" {
		items, err := ctrl.Service.GetMissionTypesRequiring(c.UserContext(), orgID, actionTypeID)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(items)
	}
	items, err := ctrl.Service.ListMissionTypes(c.UserContext(), orgID, c.QueryBool("all", false))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(items)
}

// GetMissionType godoc
// @Summary      Get mission type
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Mission type ID"
// @Success      200  {object} models.MissionType
// @Router       /api/organizations/{orgId}/mission-types/{id} [get]
func (ctrl *OrganizationController) GetMissionType(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.GetMissionType(c.UserContext(), orgID, c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

// CreateMissionType godoc
// @Summary      Create mission type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body MissionTypeInput true "Mission type"
// @Success      201  {object} models.MissionType
// @Router       /api/organizations/{orgId}/mission-types [post]
func (ctrl *OrganizationController) CreateMissionType(c *fiber.Ctx) error {
	var in MissionTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.CreateMissionType(c.UserContext(), c.Params("orgId"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateMissionType godoc
// @Summary      Update mission type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Mission type ID"
// @Param        input body MissionTypeInput true "Mission type"
// @Success      200  {object} models.MissionType
// @Router       /api/organizations/{orgId}/mission-types/{id} [put]
func (ctrl *OrganizationController) UpdateMissionType(c *fiber.Ctx) error {
	var in MissionTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.UpdateMissionType(c.UserContext(), c.Params("orgId"), c.Params("id"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

// DeleteMissionType godoc
// @Summary      Deactivate mission type
// @Tags         catalog
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Mission type ID"
// @Success      204
// @Router       /api/organizations/{orgId}/mission-types/{id} [delete]
func (ctrl *OrganizationController) DeleteMissionType(c *fiber.Ctx) error {
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	if err := ctrl.Service.DeleteMissionType(c.UserContext(), c.Params("orgId"), c.Params("id"), actorID); err != nil {
		return api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRanks godoc
// @Summary      List ranks
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        all query bool false "Include inactive"
// @Success      200  {array} models.RankConfiguration
// @Router       /api/organizations/{orgId}/ranks [get]
func (ctrl *OrganizationController) ListRanks(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	items, err := ctrl.Service.ListRanks(c.UserContext(), orgID, c.QueryBool("all", false))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(items)
}

// GetEligibleRank godoc
// @Summary      Rank for a point total
// @Description  Returns the highest active rank reachable with the given points, and the next one
// @Tags         catalog
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        points query int true "Points"
// @Success      200  {object} map[string]interface{}
// @Router       /api/organizations/{orgId}/ranks/eligible [get]
func (ctrl *OrganizationController) GetEligibleRank(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	points, err := strconv.Atoi(c.Query("points"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "points must be an integer",
		})
	}
	eligible, err := ctrl.Service.GetEligibleRank(c.UserContext(), orgID, points)
	if err != nil {
		return api.Error(c, err)
	}
	next, err := ctrl.Service.GetNextRank(c.UserContext(), orgID, points)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"eligible": eligible,
		"next":     next,
	})
}

// CreateRank godoc
// @Summary      Create rank
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body RankInput true "Rank"
// @Success      201  {object} models.RankConfiguration
// @Router       /api/organizations/{orgId}/ranks [post]
func (ctrl *OrganizationController) CreateRank(c *fiber.Ctx) error {
	var in RankInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.CreateRank(c.UserContext(), c.Params("orgId"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateRank godoc
// @Summary      Update rank
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Rank ID"
// @Param        input body RankInput true "Rank"
// @Success      200  {object} models.RankConfiguration
// @Router       /api/organizations/{orgId}/ranks/{id} [put]
func (ctrl *OrganizationController) UpdateRank(c *fiber.Ctx) error {
	var in RankInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	item, err := ctrl.Service.UpdateRank(c.UserContext(), c.Params("orgId"), c.Params("id"), in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

// DeleteRank godoc
// @Summary      Deactivate rank
// @Tags         catalog
// @Param        orgId path string true "Organization ID"
// @Param        id path string true "Rank ID"
// @Success      204
// @Router       /api/organizations/{orgId}/ranks/{id} [delete]
func (ctrl *OrganizationController) DeleteRank(c *fiber.Ctx) error {
	actorID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	if err := ctrl.Service.DeleteRank(c.UserContext(), c.Params("orgId"), c.Params("id"), actorID); err != nil {
		return api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}
