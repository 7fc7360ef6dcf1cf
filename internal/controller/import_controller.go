package controller

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/service"
)

var importAudit *service.ImportAudit

func InitImportController(audit *service.ImportAudit) {
	importAudit = audit
}

// ListImports son içe aktarma kayıtlarını döner
func ListImports(c *fiber.Ctx) error {
	batches, err := importAudit.History(c.UserContext(), middleware.CurrentUser(c), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err, "Could not fetch import history")
	}
	return c.JSON(fiber.Map{"imports": batches})
}
