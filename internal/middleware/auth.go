package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/logger"
)

const userKey = "user"

// AuthMiddleware Bearer token'ı doğrular ve kullanıcıyı c.Locals("user") içine koyar
func AuthMiddleware(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			logger.FromFiber(c).Debug("Rejected bearer token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		c.Locals(userKey, user)
		l := logger.FromFiber(c).With(zap.Uint("user_id", user.ID))
		c.Locals(logger.LocalsKey, l)
		c.SetUserContext(logger.WithContext(c.UserContext(), l))
		return c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userKey).(*model.User)
	return user
}
