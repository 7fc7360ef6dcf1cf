package controller

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/middleware"
)

// UploadPropertyPhoto mülk için fotoğraf yükler
func UploadPropertyPhoto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}

	photo, err := propertyService.AddPhoto(c.UserContext(), middleware.CurrentUser(c), id, file)
	if err != nil {
		return respondError(c, err, "Could not upload photo")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Photo uploaded successfully",
		"photo":   photo,
	})
}
