package controller

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/service"
)

var authService *service.AuthService

func InitAuthController(svc *service.AuthService) {
	authService = svc
}

// Login kullanıcı girişi
func Login(c *fiber.Ctx) error {
	input := new(service.LoginInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	token, user, err := authService.Login(c.UserContext(), *input)
	if err != nil {
		return respondError(c, err, "Could not log in")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.GetPublicProfile(),
	})
}

// GetMe oturum açmış kullanıcının bilgilerini getirir
func GetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"user": user.GetPublicProfile(),
	})
}
