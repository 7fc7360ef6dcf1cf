package controller

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/export"
)

var propertyService *service.PropertyService

func InitPropertyController(svc *service.PropertyService) {
	propertyService = svc
}

type BulkPropertiesInput struct {
	Properties []service.PropertyInput `json:"properties"`
}

// ListProperties arama, durum filtresi ve sayfalama ile mülkleri listeler
func ListProperties(c *fiber.Ctx) error {
	filter := repository.PropertyFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 15),
	}

	properties, total, err := propertyService.List(c.UserContext(), middleware.CurrentUser(c), filter)
	if err != nil {
		return respondError(c, err, "Could not fetch properties")
	}

	return c.JSON(fiber.Map{
		"properties": properties,
		"pagination": fiber.Map{
			"total":        total,
			"current_page": filter.Page,
			"per_page":     filter.PerPage,
		},
	})
}

func GetProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	property, err := propertyService.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err, "Could not fetch property")
	}
	return c.JSON(fiber.Map{"property": property})
}

// CreateProperty yeni mülk oluşturur
func CreateProperty(c *fiber.Ctx) error {
	input := new(service.PropertyInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	property, err := propertyService.Create(c.UserContext(), middleware.CurrentUser(c), *input)
	if err != nil {
		return respondError(c, err, "Could not create property")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Property created successfully",
		"property": property,
	})
}

func BulkCreateProperties(c *fiber.Ctx) error {
	input := new(BulkPropertiesInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	properties, err := propertyService.BulkCreate(c.UserContext(), middleware.CurrentUser(c), input.Properties)
	if err != nil {
		return respondError(c, err, "Could not create properties")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Properties created successfully",
		"created_count": len(properties),
		"properties":    properties,
	})
}

func UpdateProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.PropertyInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	property, err := propertyService.Update(c.UserContext(), middleware.CurrentUser(c), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update property")
	}

	return c.JSON(fiber.Map{
		"message":  "Property updated successfully",
		"property": property,
	})
}

// DeleteProperty birimi olmayan mülkü siler
func DeleteProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := propertyService.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err, "Could not delete property")
	}
	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}

func GetPropertyCapacity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	capacity, err := propertyService.Capacity(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err, "Could not calculate capacity")
	}
	return c.JSON(capacity)
}

func GetPropertyTemplate(c *fiber.Ctx) error {
	return c.JSON(propertyService.Template())
}

func PreviewPropertyImport(c *fiber.Ctx) error {
	req := new(importer.Request)
	if err := parseImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := propertyService.Preview(c.UserContext(), *req)
	if err != nil {
		return respondError(c, err, "Preview failed")
	}
	return c.JSON(result)
}

func ImportProperties(c *fiber.Ctx) error {
	req := new(importer.Request)
	if err := parseImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := propertyService.Import(c.UserContext(), middleware.CurrentUser(c), *req)
	if err != nil {
		return respondError(c, err, "Import failed")
	}
	return respondImport(c, result)
}

func ExportProperties(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var buf bytes.Buffer
	if err := propertyService.Export(c.UserContext(), middleware.CurrentUser(c), format, &buf); err != nil {
		return respondError(c, err, "Export failed")
	}

	c.Attachment(service.ExportFilename("properties", format, time.Now()))
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}
