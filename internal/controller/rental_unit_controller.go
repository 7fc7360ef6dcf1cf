package controller

import (
	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/validation"
)

var rentalUnitService *service.RentalUnitService

func InitRentalUnitController(svc *service.RentalUnitService) {
	rentalUnitService = svc
}

type UnitAssetsInput struct {
	Assets []service.UnitAssetInput `json:"assets"`
}

func ListRentalUnits(c *fiber.Ctx) error {
	filter := repository.UnitFilter{
		PropertyID: queryUint(c, "property_id"),
		Status:     c.Query("status"),
	}
	units, err := rentalUnitService.List(c.UserContext(), middleware.CurrentUser(c), filter)
	if err != nil {
		return respondError(c, err, "Could not fetch rental units")
	}
	return c.JSON(fiber.Map{"rental_units": units})
}

// ListPropertyRentalUnits /properties/:id/rental-units
func ListPropertyRentalUnits(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	if _, err := propertyService.Get(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err, "Could not fetch property")
	}
	units, err := rentalUnitService.List(c.UserContext(), middleware.CurrentUser(c), repository.UnitFilter{PropertyID: &id})
	if err != nil {
		return respondError(c, err, "Could not fetch rental units")
	}
	return c.JSON(fiber.Map{"rental_units": units})
}

func GetRentalUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	unit, err := rentalUnitService.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err, "Could not fetch rental unit")
	}
	return c.JSON(fiber.Map{"rental_unit": unit})
}

func CreateRentalUnit(c *fiber.Ctx) error {
	input := new(service.UnitInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	unit, err := rentalUnitService.Create(c.UserContext(), middleware.CurrentUser(c), *input)
	if err != nil {
		return respondError(c, err, "Could not create rental unit")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Rental unit created successfully",
		"rental_unit": unit,
	})
}

// BulkCreateRentalUnits birimleri tek işlemde, kota kontrolüyle oluşturur
func BulkCreateRentalUnits(c *fiber.Ctx) error {
	input := new(service.BulkUnitsRequest)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	units, err := rentalUnitService.BulkCreate(c.UserContext(), middleware.CurrentUser(c), *input)
	if err != nil {
		return respondError(c, err, "Could not create rental units")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Rental units created successfully",
		"created_count": len(units),
		"rental_units":  units,
	})
}

func UpdateRentalUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.UnitInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	unit, err := rentalUnitService.Update(c.UserContext(), middleware.CurrentUser(c), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update rental unit")
	}
	return c.JSON(fiber.Map{
		"message":     "Rental unit updated successfully",
		"rental_unit": unit,
	})
}

func UpdateRentalUnitStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.UnitStatusInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	unit, err := rentalUnitService.UpdateStatus(c.UserContext(), middleware.CurrentUser(c), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update rental unit status")
	}
	return c.JSON(fiber.Map{
		"message":     "Rental unit status updated successfully",
		"rental_unit": unit,
	})
}

func DeleteRentalUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := rentalUnitService.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err, "Could not delete rental unit")
	}
	return c.JSON(fiber.Map{"message": "Rental unit deleted successfully"})
}

func ListRentalUnitAssets(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	assets, err := rentalUnitService.ListAssets(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err, "Could not fetch unit assets")
	}
	return c.JSON(fiber.Map{"assets": assets})
}

func AddRentalUnitAssets(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(UnitAssetsInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	assets, err := rentalUnitService.AddAssets(c.UserContext(), middleware.CurrentUser(c), id, input.Assets)
	if err != nil {
		return respondError(c, err, "Could not add assets")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Assets added successfully",
		"assets":  assets,
	})
}

func RemoveRentalUnitAsset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	placementID, err := paramID(c, "placement_id")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := rentalUnitService.RemoveAsset(c.UserContext(), middleware.CurrentUser(c), id, placementID); err != nil {
		return respondError(c, err, "Could not remove asset")
	}
	return c.JSON(fiber.Map{"message": "Asset removed successfully"})
}

// UpdateRentalUnitAsset yerleştirilmiş varlığın durumunu ve ayrıntılarını günceller
func UpdateRentalUnitAsset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	placementID, err := paramID(c, "placement_id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.PlacementUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	placement, err := rentalUnitService.UpdateAssetPlacement(c.UserContext(), middleware.CurrentUser(c), id, placementID, *input)
	if err != nil {
		return respondError(c, err, "Failed to update asset status")
	}
	return c.JSON(fiber.Map{
		"message":    "Asset status updated successfully",
		"assignment": placement,
	})
}

// BulkAssignRentalUnitAssets aynı varlıkları birden çok birime yerleştirir
func BulkAssignRentalUnitAssets(c *fiber.Ctx) error {
	input := new(service.BulkAssignRequest)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	result, err := rentalUnitService.BulkAssignAssets(c.UserContext(), middleware.CurrentUser(c), *input)
	if err != nil {
		return respondError(c, err, "Failed to assign assets")
	}
	return c.JSON(fiber.Map{
		"message": "Bulk asset assignment completed",
		"results": result,
	})
}

func GetRentalUnitTemplate(c *fiber.Ctx) error {
	return c.JSON(rentalUnitService.Template())
}

func parseUnitImportRequest(c *fiber.Ctx, req *service.UnitImportRequest) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.BadRequest("Invalid input", nil)
	}
	if errs := validation.Struct(req.Request); errs != nil {
		return apperror.Validation(errs)
	}
	return nil
}

func PreviewRentalUnitImport(c *fiber.Ctx) error {
	req := new(service.UnitImportRequest)
	if err := parseUnitImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := rentalUnitService.Preview(c.UserContext(), middleware.CurrentUser(c), *req)
	if err != nil {
		return respondError(c, err, "Preview failed")
	}
	return c.JSON(result)
}

// ImportRentalUnits CSV satırlarını toplu oluşturma kurallarıyla ekler
func ImportRentalUnits(c *fiber.Ctx) error {
	req := new(service.UnitImportRequest)
	if err := parseUnitImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := rentalUnitService.Import(c.UserContext(), middleware.CurrentUser(c), *req)
	if err != nil {
		return respondError(c, err, "Import failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Rental units created successfully",
		"created_count": len(result.Units),
		"rental_units":  result.Units,
		"imported":      result.Imported,
		"failed":        result.Failed,
		"errors":        result.Errors,
	})
}
