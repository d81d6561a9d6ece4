package middleware

import (
	"context"

	"trackdoc/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RoleService is the subset of the role feature the middleware needs.
// An adapter in main satisfies it to avoid an import cycle.
type RoleService interface {
	CheckPermission(ctx context.Context, roleIDs []string, resource string, action string) (bool, error)
}

// RequirePermission checks if the user has a specific permission on a resource
func RequirePermission(roleService RoleService, resource string, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		hasPermission, err := roleService.CheckPermission(c.UserContext(), claims.Roles, resource, action)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		if !hasPermission {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}
