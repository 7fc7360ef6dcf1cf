package controller

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/service"
)

var (
	refData         *refdata.Service
	unitTypeService *service.UnitTypeService
)

func InitReferenceController(ref *refdata.Service, types *service.UnitTypeService) {
	refData = ref
	unitTypeService = types
}

// GetReferenceData form seçenekleri için tüm enum değerlerini döner
func GetReferenceData(c *fiber.Ctx) error {
	data, err := refData.All(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not load reference data")
	}
	return c.JSON(data)
}

func ListRentalUnitTypes(c *fiber.Ctx) error {
	types, err := unitTypeService.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, err, "Could not fetch rental unit types")
	}
	return c.JSON(fiber.Map{"rental_unit_types": types})
}

func CreateRentalUnitType(c *fiber.Ctx) error {
	input := new(service.UnitTypeInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	t, err := unitTypeService.Create(c.UserContext(), middleware.CurrentUser(c), *input)
	if err != nil {
		return respondError(c, err, "Could not create rental unit type")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":          "Rental unit type created successfully",
		"rental_unit_type": t,
	})
}

func UpdateRentalUnitType(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.UnitTypeInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	t, err := unitTypeService.Update(c.UserContext(), middleware.CurrentUser(c), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update rental unit type")
	}
	return c.JSON(fiber.Map{
		"message":          "Rental unit type updated successfully",
		"rental_unit_type": t,
	})
}
