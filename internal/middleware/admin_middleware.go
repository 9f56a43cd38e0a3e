package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// AdminChecker resolves admin rights from stored user data rather than token contents.
type AdminChecker interface {
	HasAdminRole(ctx context.Context, userID, organizationID string) (bool, error)
}

// RequireOrgAdmin allows the request only when the caller is an admin of the organization
// named by the orgParam route parameter, or of the caller's own organization when the
// parameter is absent.
func RequireOrgAdmin(checker AdminChecker, orgParam string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || claims.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		orgID := claims.OrganizationID
		if orgParam != "" && c.Params(orgParam) != "" {
			orgID = c.Params(orgParam)
		}

		ok, err := checker.HasAdminRole(c.UserContext(), claims.UserID, orgID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Admin role required",
			})
		}
		return c.Next()
	}
}
