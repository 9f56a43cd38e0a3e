package user

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service  UserService
	Identity auth.Identity
}

func NewUserController(service UserService, identity auth.Identity) *UserController {
	return &UserController{Service: service, Identity: identity}
}

// CreateUser godoc
// @Summary      Register user
// @Description  Register an employee in an organization (admin only)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        input body UserInput true "User"
// @Success      201  {object} models.User
// @Failure      400  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Router       /api/organizations/{orgId}/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var in UserInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	orgID := c.Params("orgId")
	actorID, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	u, err := ctrl.Service.CreateUser(c.UserContext(), orgID, in, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// ListUsers godoc
// @Summary      List organization users
// @Tags         users
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} UserPage
// @Router       /api/organizations/{orgId}/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireMember(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 20)
	res, err := ctrl.Service.ListUsers(c.UserContext(), orgID, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// GetUser godoc
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} models.User
// @Failure      403  {object} map[string]string
// @Failure      404  {object} map[string]string
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), id); err != nil {
		return api.Error(c, err)
	}
	u, err := ctrl.Service.GetUser(c.UserContext(), id)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(u)
}

// UpdateProfile godoc
// @Summary      Update user profile
// @Description  Admins edit profiles of users in their organization
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body ProfileInput true "Profile"
// @Success      200  {object} models.User
// @Router       /api/users/{id} [put]
func (ctrl *UserController) UpdateProfile(c *fiber.Ctx) error {
	var in ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	id := c.Params("id")
	orgID, err := ctrl.Identity.OrganizationOf(c.UserContext(), id)
	if err != nil {
		return api.Error(c, err)
	}
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	u, err := ctrl.Service.UpdateProfile(c.UserContext(), id, in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(u)
}

// DirectReports godoc
// @Summary      Direct reports
// @Tags         users
// @Produce      json
// @Param        id path string true "Manager user ID"
// @Success      200  {array} models.User
// @Router       /api/users/{id}/reports [get]
func (ctrl *UserController) DirectReports(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), id); err != nil {
		return api.Error(c, err)
	}
	users, err := ctrl.Service.DirectReports(c.UserContext(), id)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(users)
}
