package controller

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/export"
)

var assetService *service.AssetService

func InitAssetController(svc *service.AssetService) {
	assetService = svc
}

func assetFilter(c *fiber.Ctx) repository.AssetFilter {
	return repository.AssetFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}
}

func ListAssets(c *fiber.Ctx) error {
	assets, err := assetService.List(c.UserContext(), assetFilter(c))
	if err != nil {
		return respondError(c, err, "Could not fetch assets")
	}
	return c.JSON(fiber.Map{"assets": assets})
}

func GetAsset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	asset, err := assetService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not fetch asset")
	}
	return c.JSON(fiber.Map{"asset": asset})
}

func CreateAsset(c *fiber.Ctx) error {
	input := new(service.AssetInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	asset, err := assetService.Create(c.UserContext(), *input)
	if err != nil {
		return respondError(c, err, "Could not create asset")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Asset created successfully",
		"asset":   asset,
	})
}

func UpdateAsset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.AssetInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	asset, err := assetService.Update(c.UserContext(), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update asset")
	}
	return c.JSON(fiber.Map{
		"message": "Asset updated successfully",
		"asset":   asset,
	})
}

func UpdateAssetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	input := new(service.AssetStatusInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	asset, err := assetService.UpdateStatus(c.UserContext(), id, *input)
	if err != nil {
		return respondError(c, err, "Could not update asset status")
	}
	return c.JSON(fiber.Map{
		"message": "Asset status updated successfully",
		"asset":   asset,
	})
}

func DeleteAsset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := assetService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete asset")
	}
	return c.JSON(fiber.Map{"message": "Asset deleted successfully"})
}

func GetAssetTemplate(c *fiber.Ctx) error {
	return c.JSON(assetService.Template())
}

func PreviewAssetImport(c *fiber.Ctx) error {
	req := new(importer.Request)
	if err := parseImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := assetService.Preview(c.UserContext(), *req)
	if err != nil {
		return respondError(c, err, "Preview failed")
	}
	return c.JSON(result)
}

func ImportAssets(c *fiber.Ctx) error {
	req := new(importer.Request)
	if err := parseImportRequest(c, req); err != nil {
		return respondError(c, err, "")
	}
	result, err := assetService.Import(c.UserContext(), middleware.CurrentUser(c), *req)
	if err != nil {
		return respondError(c, err, "Import failed")
	}
	return respondImport(c, result)
}

func formBool(c *fiber.Ctx, name string, def bool) bool {
	raw := c.FormValue(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// ImportAssetFile multipart .csv veya .xlsx dosyasından varlık içe aktarır
func ImportAssetFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}

	var mapping importer.FieldMapping
	if raw := c.FormValue("field_mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			return invalidInput(c)
		}
	}

	result, err := assetService.ImportFile(c.UserContext(), middleware.CurrentUser(c), service.AssetFileImport{
		File:         file,
		FieldMapping: mapping,
		HasHeader:    formBool(c, "has_header", true),
		SkipErrors:   formBool(c, "skip_errors", false),
	})
	if err != nil {
		return respondError(c, err, "Import failed")
	}
	return respondImport(c, result)
}

func ExportAssets(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var buf bytes.Buffer
	if err := assetService.Export(c.UserContext(), assetFilter(c), format, &buf); err != nil {
		return respondError(c, err, "Export failed")
	}

	c.Attachment(service.ExportFilename("assets", format, time.Now()))
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}
