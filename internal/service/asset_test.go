package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
)

func assetCSVRequest(csv string, skipErrors bool) importer.Request {
	return importer.Request{
		CSVData: csv,
		FieldMapping: mapping(importer.FieldName, importer.FieldBrand, importer.FieldSerialNo,
			importer.FieldCategory, importer.FieldStatus),
		SkipErrors: skipErrors,
	}
}

func TestAssetImport_SecondRunReportsDuplicate(t *testing.T) {
	f := newFixture(t)
	req := assetCSVRequest("name,brand,serial_no,category,status\n\"AC-1\",\"Daikin\",\"SN001\",\"hvac\",\"working\"\n", false)

	res, err := f.assets.Import(f.ctx, f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Errors)

	res, err = f.assets.Import(f.ctx, f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "AC-1")
	assert.Contains(t, res.Errors[0], "SN001")

	assets, err := f.store.ListAssets(f.ctx, repository.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, model.AssetCategoryHVAC, assets[0].Category)

	batches, err := f.store.ListImportBatches(f.ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, model.ImportRolledBack, batches[0].Outcome)
}

func TestAssetImport_SkipErrorsKeepsGoodRows(t *testing.T) {
	f := newFixture(t)
	csv := "name,brand,serial_no,category,status\n" +
		"Fridge,LG,F-1,appliance,working\n" +
		"Fridge,LG,F-1,appliance,working\n" +
		"Lamp,,,lighting,working\n" +
		"Sofa,,,furniture,\n"

	res, err := f.assets.Import(f.ctx, f.admin, assetCSVRequest(csv, true))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "Row 2: Asset with name 'Fridge' with serial number 'F-1' already exists", res.Errors[0])
	assert.Contains(t, res.Errors[1], "Row 3:")
}

func TestAssetImport_WithoutSerialNumber(t *testing.T) {
	f := newFixture(t)
	req := assetCSVRequest("name,brand,serial_no,category,status\nChair,,,furniture,working\n", false)

	_, err := f.assets.Import(f.ctx, f.admin, req)
	require.NoError(t, err)
	res, err := f.assets.Import(f.ctx, f.admin, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Row 1: Asset with name 'Chair' without serial number already exists"}, res.Errors)
}

func TestAssetCreate_Duplicate(t *testing.T) {
	f := newFixture(t)
	serial := " SN-9 "
	a, err := f.assets.Create(f.ctx, AssetInput{Name: "TV", Category: "electronics", SerialNo: &serial})
	require.NoError(t, err)
	assert.Equal(t, "SN-9", *a.SerialNo)
	assert.Equal(t, model.AssetStatusWorking, a.Status)

	_, err = f.assets.Create(f.ctx, AssetInput{Name: "TV", Category: "electronics", SerialNo: &serial})
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, map[string][]string{
		"serial_no": {"An asset with this name and serial number already exists."},
	}, appErr.Details["errors"])

	_, err = f.assets.Update(f.ctx, a.ID, AssetInput{Name: "TV", Category: "electronics", SerialNo: &serial, Status: "faulty"})
	require.NoError(t, err)
}

func TestAssetUpdateStatus(t *testing.T) {
	f := newFixture(t)
	a, err := f.assets.Create(f.ctx, AssetInput{Name: "Heater", Category: "appliance"})
	require.NoError(t, err)

	_, err = f.assets.UpdateStatus(f.ctx, a.ID, AssetStatusInput{Status: "broken"})
	requireAppError(t, err, 400)

	a, err = f.assets.UpdateStatus(f.ctx, a.ID, AssetStatusInput{Status: "retired"})
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusRetired, a.Status)
}

func TestAssetCategoryMatchesImportRules(t *testing.T) {
	f := newFixture(t)

	a, err := f.assets.Create(f.ctx, AssetInput{Name: "AC-2", Category: "HVAC", Status: "Working"})
	require.NoError(t, err)
	assert.Equal(t, model.AssetCategoryHVAC, a.Category)
	assert.Equal(t, model.AssetStatusWorking, a.Status)

	res, err := f.assets.Import(f.ctx, f.admin, importer.Request{
		CSVData:      "name,category\nAC-3,HVAC\n",
		FieldMapping: mapping(importer.FieldName, importer.FieldCategory),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	_, err = f.assets.Create(f.ctx, AssetInput{Name: "Hose", Category: "garden"})
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"].(map[string][]string)["category"][0], "Must be one of: furniture")
}
