package middleware

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/model"
)

// RequireRole kullanıcının rolünü kontrol eder
func RequireRole(roles ...model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You don't have permission to perform this action",
		})
	}
}
