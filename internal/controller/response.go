package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/pkg/logger"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/validation"
)

// respondError renders service errors. AppError details are merged into the
// top level of the body; anything else is a 500 with the raw error text.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	if appErr, ok := apperror.As(err); ok {
		body := fiber.Map{"message": appErr.Message}
		for k, v := range appErr.Details {
			body[k] = v
		}
		return c.Status(appErr.StatusCode).JSON(body)
	}

	logger.FromFiber(c).Error(fallback, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fallback,
		"error":   err.Error(),
	})
}

func invalidInput(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid input",
	})
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid "+name, nil)
	}
	return uint(id), nil
}

func queryUint(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

// parseImportRequest decodes and validates the preview/import body.
func parseImportRequest(c *fiber.Ctx, req *importer.Request) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.BadRequest("Invalid input", nil)
	}
	if errs := validation.Struct(req); errs != nil {
		return apperror.Validation(errs)
	}
	return nil
}

// respondImport 200 when the batch committed, 400 when it was rolled back.
func respondImport(c *fiber.Ctx, res importer.Result) error {
	status, message := fiber.StatusOK, "Import completed"
	if !res.Committed {
		status, message = fiber.StatusBadRequest, "Import failed"
	}
	return c.Status(status).JSON(fiber.Map{
		"message":  message,
		"imported": res.Imported,
		"failed":   res.Failed,
		"errors":   res.Errors,
	})
}
