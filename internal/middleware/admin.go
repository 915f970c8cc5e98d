package middleware

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole rejects callers whose role is not in roles. It must run after
// JWTProtected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := access.MustUser(c)
		if err != nil {
			return err
		}
		if err := access.RequireRole(user, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// AdminRequired is RequireRole(admin).
func AdminRequired() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}
