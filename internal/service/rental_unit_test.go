package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
)

func unitCSVRequest(propertyID uint, csv string) UnitImportRequest {
	return UnitImportRequest{
		Request: importer.Request{
			CSVData:      csv,
			FieldMapping: mapping(importer.FieldUnitNumber, importer.FieldRentAmount, importer.FieldCurrency),
		},
		PropertyID: propertyID,
	}
}

func TestRentalUnitImport_RejectsBatchOverQuota(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 1)

	req := unitCSVRequest(p.ID, "unit_number,rent_amount,currency\n101,8500,MVR\n102,9000,MVR\n")
	for i := 0; i < 2; i++ {
		_, err := f.units.Import(f.ctx, f.admin, req)

		appErr := requireAppError(t, err, 400)
		assert.Equal(t, 1, appErr.Details["remaining_units"])
		assert.Equal(t, 2, appErr.Details["requested_units"])
		assert.Equal(t, 1, appErr.Details["max_units"])
		assert.Equal(t, "Coral House", appErr.Details["property_name"])
	}

	count, err := f.store.CountRentalUnits(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRentalUnitImport_CreatesUnitsWithinQuota(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 3)

	res, err := f.units.Import(f.ctx, f.admin, unitCSVRequest(p.ID, "unit_number,rent_amount,currency\n101,8500,mvr\n102,9000,MVR\n"))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Units, 2)
	assert.Equal(t, "MVR", res.Units[0].Currency)
	assert.Equal(t, model.UnitStatusAvailable, res.Units[0].Status)

	batches, err := f.store.ListImportBatches(f.ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, model.ImportCommitted, batches[0].Outcome)
	assert.Equal(t, 2, batches[0].Imported)
}

func TestRentalUnitImport_InvalidRowRejectsFile(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 3)

	_, err := f.units.Import(f.ctx, f.admin, unitCSVRequest(p.ID, "unit_number,rent_amount,currency\n101,8500,MVR\n102,,MVR\n"))

	appErr := requireAppError(t, err, 400)
	assert.Equal(t, "Import failed", appErr.Message)
	assert.Equal(t, 0, appErr.Details["imported"])
	assert.Equal(t, 1, appErr.Details["failed"])
	assert.Equal(t, []string{"Row 2: Missing required field 'rent_amount'"}, appErr.Details["errors"])

	count, err := f.store.CountRentalUnits(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRentalUnitImport_SkipErrorsKeepsValidRows(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 3)

	req := unitCSVRequest(p.ID, "unit_number,rent_amount,currency\n101,8500,MVR\n102,,MVR\n")
	req.SkipErrors = true
	res, err := f.units.Import(f.ctx, f.admin, req)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Imported+res.Failed)
	assert.Equal(t, []string{"Row 2: Missing required field 'rent_amount'"}, res.Errors)
	require.Len(t, res.Units, 1)
	assert.Equal(t, "101", res.Units[0].UnitNumber)

	count, err := f.store.CountRentalUnits(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	batches, err := f.store.ListImportBatches(f.ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, model.ImportCommitted, batches[0].Outcome)
	assert.True(t, batches[0].SkipErrors)
}

func TestRentalUnitImport_SkipErrorsReportsExistingNumber(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 3)
	_, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	req := unitCSVRequest(p.ID, "unit_number,rent_amount,currency\n101,8500,MVR\n102,9000,MVR\n")
	req.SkipErrors = true
	res, err := f.units.Import(f.ctx, f.admin, req)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []string{"Row 1: Unit number '101' already exists for this property."}, res.Errors)
}

func TestRentalUnitCreate_SingleUnitOverQuota(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 1)

	_, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	_, err = f.units.Create(f.ctx, f.admin, unitInput(p.ID, "102"))
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, 0, appErr.Details["remaining_units"])
	assert.Equal(t, int64(1), appErr.Details["existing_units"])
}

func TestRentalUnitBulkCreate_Collisions(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 10)

	first := unitInput(p.ID, "101")
	first.AccessCardNumbers = "C-1, C-2"
	_, err := f.units.Create(f.ctx, f.admin, first)
	require.NoError(t, err)

	t.Run("duplicate inside the request", func(t *testing.T) {
		_, err := f.units.BulkCreate(f.ctx, f.admin, BulkUnitsRequest{
			PropertyID: p.ID,
			Units:      []UnitInput{unitInput(p.ID, "201"), unitInput(p.ID, "201")},
		})
		appErr := requireAppError(t, err, 400)
		assert.Equal(t, "Duplicate unit numbers found within the request", appErr.Message)
		assert.Equal(t, []string{"201"}, appErr.Details["duplicate_units"])
	})

	t.Run("existing unit number", func(t *testing.T) {
		_, err := f.units.BulkCreate(f.ctx, f.admin, BulkUnitsRequest{
			PropertyID: p.ID,
			Units:      []UnitInput{unitInput(p.ID, "101")},
		})
		appErr := requireAppError(t, err, 400)
		assert.Equal(t, "Some unit numbers already exist for this property", appErr.Message)
	})

	t.Run("access card already assigned", func(t *testing.T) {
		u := unitInput(p.ID, "301")
		u.AccessCardNumbers = "C-2,C-9"
		_, err := f.units.BulkCreate(f.ctx, f.admin, BulkUnitsRequest{PropertyID: p.ID, Units: []UnitInput{u}})
		appErr := requireAppError(t, err, 400)
		assert.Equal(t, []string{"C-2"}, appErr.Details["duplicate_access_cards"])
	})

	count, err := f.store.CountRentalUnits(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRentalUnitBulkCreate_ValidationKeys(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 10)

	bad := unitInput(p.ID, "102")
	bad.Status = string(model.UnitStatusOccupied)
	_, err := f.units.BulkCreate(f.ctx, f.admin, BulkUnitsRequest{
		PropertyID: p.ID,
		Units:      []UnitInput{unitInput(p.ID, "101"), bad},
	})

	appErr := requireAppError(t, err, 400)
	errs, ok := appErr.Details["errors"].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, errs, "units[1].tenant_id")
}

func TestRentalUnitStatus_DrivesPropertyStatus(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	_, err = f.units.UpdateStatus(f.ctx, f.admin, u.ID, UnitStatusInput{Status: "occupied"})
	requireAppError(t, err, 400)

	tenant := uint(42)
	u, err = f.units.UpdateStatus(f.ctx, f.admin, u.ID, UnitStatusInput{Status: "occupied", TenantID: &tenant})
	require.NoError(t, err)
	require.NotNil(t, u.TenantID)

	got, err := f.store.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusOccupied, got.Status)

	u, err = f.units.UpdateStatus(f.ctx, f.admin, u.ID, UnitStatusInput{Status: "maintenance"})
	require.NoError(t, err)
	assert.Nil(t, u.TenantID)

	got, err = f.store.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusVacant, got.Status)
}

func TestRentalUnitAccess_ManagerLimitedToAssignedProperties(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	_, err = f.units.Get(f.ctx, f.manager, u.ID)
	requireAppError(t, err, 403)

	units, err := f.units.List(f.ctx, f.manager, repository.UnitFilter{})
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestRentalUnitAssets_PlaceAndRemove(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)
	asset, err := f.assets.Create(f.ctx, AssetInput{Name: "Sofa", Category: "furniture"})
	require.NoError(t, err)

	placed, err := f.units.AddAssets(f.ctx, f.admin, u.ID, []UnitAssetInput{{AssetID: asset.ID}, {AssetID: asset.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, placed, 2)
	assert.Equal(t, 1, placed[0].Quantity)
	assert.Equal(t, model.AssetStatusWorking, placed[0].Status)

	_, err = f.units.AddAssets(f.ctx, f.admin, u.ID, []UnitAssetInput{{AssetID: 9999}})
	requireAppError(t, err, 400)

	require.NoError(t, f.units.RemoveAsset(f.ctx, f.admin, u.ID, placed[0].ID))
	active, err := f.units.ListAssets(f.ctx, f.admin, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestRentalUnitAssets_UpdatePlacement(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)
	asset, err := f.assets.Create(f.ctx, AssetInput{Name: "Washer", Category: "appliance"})
	require.NoError(t, err)
	placed, err := f.units.AddAssets(f.ctx, f.admin, u.ID, []UnitAssetInput{{AssetID: asset.ID}})
	require.NoError(t, err)

	qty, location, notes := 2, " Laundry ", "Drum replaced"
	ua, err := f.units.UpdateAssetPlacement(f.ctx, f.admin, u.ID, placed[0].ID, PlacementUpdateInput{
		Status: "Maintenance", Quantity: &qty, AssetLocation: &location, Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusMaintenance, ua.Status)
	assert.Equal(t, 2, ua.Quantity)
	assert.Equal(t, "Laundry", ua.AssetLocation)
	assert.Equal(t, "Drum replaced", ua.Notes)

	_, err = f.units.UpdateAssetPlacement(f.ctx, f.admin, u.ID, placed[0].ID, PlacementUpdateInput{Status: "lost"})
	requireAppError(t, err, 400)

	other, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "102"))
	require.NoError(t, err)
	_, err = f.units.UpdateAssetPlacement(f.ctx, f.admin, other.ID, placed[0].ID, PlacementUpdateInput{Status: "working"})
	requireAppError(t, err, 404)

	require.NoError(t, f.units.RemoveAsset(f.ctx, f.admin, u.ID, placed[0].ID))
	_, err = f.units.UpdateAssetPlacement(f.ctx, f.admin, u.ID, placed[0].ID, PlacementUpdateInput{Status: "working"})
	requireAppError(t, err, 404)
}

func TestRentalUnitAssets_BulkAssign(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 3)
	first, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)
	second, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "102"))
	require.NoError(t, err)
	fan, err := f.assets.Create(f.ctx, AssetInput{Name: "Fan", Category: "appliance"})
	require.NoError(t, err)
	bed, err := f.assets.Create(f.ctx, AssetInput{Name: "Bed", Category: "furniture"})
	require.NoError(t, err)

	_, err = f.units.AddAssets(f.ctx, f.admin, first.ID, []UnitAssetInput{{AssetID: fan.ID, Status: "faulty"}})
	require.NoError(t, err)

	res, err := f.units.BulkAssignAssets(f.ctx, f.admin, BulkAssignRequest{
		RentalUnitIDs: []uint{first.ID, second.ID, 9999},
		Assets:        []UnitAssetInput{{AssetID: fan.ID, Quantity: 3}, {AssetID: bed.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.TotalUnits)
	assert.Equal(t, 2, res.TotalAssets)
	require.Len(t, res.UnitResults, 3)
	assert.Equal(t, []string{"Rental unit not found"}, res.UnitResults[2].Errors)
	assert.Equal(t, 2, res.UnitResults[2].Failed)

	// the existing fan placement is updated, not duplicated
	placed, err := f.units.ListAssets(f.ctx, f.admin, first.ID)
	require.NoError(t, err)
	require.Len(t, placed, 2)
	assert.Equal(t, fan.ID, placed[0].AssetID)
	assert.Equal(t, 3, placed[0].Quantity)
	assert.Equal(t, model.AssetStatusWorking, placed[0].Status)
	assert.Equal(t, "Updated via bulk assignment", placed[0].Notes)
	assert.Equal(t, "Assigned via bulk assignment", placed[1].Notes)

	placed, err = f.units.ListAssets(f.ctx, f.admin, second.ID)
	require.NoError(t, err)
	assert.Len(t, placed, 2)
}

func TestRentalUnitAssets_BulkAssignRejections(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)
	fan, err := f.assets.Create(f.ctx, AssetInput{Name: "Fan", Category: "appliance"})
	require.NoError(t, err)

	_, err = f.units.BulkAssignAssets(f.ctx, f.admin, BulkAssignRequest{Assets: []UnitAssetInput{{AssetID: fan.ID}}})
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "rental_unit_ids")

	_, err = f.units.BulkAssignAssets(f.ctx, f.admin, BulkAssignRequest{
		RentalUnitIDs: []uint{u.ID},
		Assets:        []UnitAssetInput{{AssetID: 9999}},
	})
	appErr = requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "assets[0].asset_id")

	res, err := f.units.BulkAssignAssets(f.ctx, f.manager, BulkAssignRequest{
		RentalUnitIDs: []uint{u.ID},
		Assets:        []UnitAssetInput{{AssetID: fan.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, []string{"Access denied"}, res.UnitResults[0].Errors)

	placed, err := f.store.ListUnitAssets(f.ctx, u.ID, true)
	require.NoError(t, err)
	assert.Empty(t, placed)
}

func TestRentalUnitStatus_RejectsZeroTenant(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Coral House", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	zero := uint(0)
	_, err = f.units.UpdateStatus(f.ctx, f.admin, u.ID, UnitStatusInput{Status: "occupied", TenantID: &zero})
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "tenant_id")
}
