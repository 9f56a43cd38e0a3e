package import_feature

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/features/action"
	"go-gamifier/internal/features/auth"
	"go-gamifier/internal/features/user"

	"github.com/gofiber/fiber/v2"
)

// ImportController accepts CSV and XLSX uploads for bulk user and action creation.
type ImportController struct {
	Users    user.UserService
	Actions  action.ActionService
	Identity auth.Identity
}

func NewImportController(users user.UserService, actions action.ActionService, identity auth.Identity) *ImportController {
	return &ImportController{
		Users:    users,
		Actions:  actions,
		Identity: identity,
	}
}

// ImportUsers godoc
// @Summary Import users
// @Description Upload a CSV/Excel file with columns employee_id, name, surname, manager_employee_id, role and optional department
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param file formData file true "Import File"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/import/{orgId}/users [post]
func (ctrl *ImportController) ImportUsers(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	actorID, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	res, err := ctrl.Users.ImportUsersFile(c.UserContext(), orgID, fileHeader.Filename, file, actorID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// ImportActions godoc
// @Summary Import actions
// @Description Upload a CSV/Excel file with columns employee_id, action_type, date and optional evidence, notes
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param file formData file true "Import File"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/import/{orgId}/actions [post]
func (ctrl *ImportController) ImportActions(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	res, err := ctrl.Actions.ImportFile(c.UserContext(), orgID, fileHeader.Filename, file)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}
