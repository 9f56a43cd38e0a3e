package auth

import (
	"go-gamifier/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
	Identity    Identity
}

func NewAuthController(authService AuthService, identity Identity) *AuthController {
	return &AuthController{
		AuthService: authService,
		Identity:    identity,
	}
}

type LoginRequest struct {
	FederationID string `json:"federation_id"`
	EmployeeID   string `json:"employee_id"`
}

// Login godoc
// @Summary      Issue a token
// @Description  Issue a JWT for an employee of a federated organization (development only)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginRequest true "Login Input"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {object} map[string]string
// @Failure      403  {object} map[string]string
// @Router       /api/auth/token [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, user, err := ctrl.AuthService.Login(c.UserContext(), req.FederationID, req.EmployeeID)
	if err != nil {
		return api.Error(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object} models.User
// @Router       /api/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	user, err := ctrl.AuthService.Me(c.UserContext(), userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(user)
}
