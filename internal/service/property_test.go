package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
)

func TestPropertyCreate_CanonicalTypeAndDefaults(t *testing.T) {
	f := newFixture(t)

	p := f.createProperty(t, "Blue Lagoon", 4)

	assert.Equal(t, "Villa", p.Type)
	assert.Equal(t, model.DefaultCountry, p.Country)
	assert.Equal(t, model.PropertyStatusVacant, p.Status)
	require.NotNil(t, p.AssignedManagerID)
	assert.Equal(t, f.admin.ID, *p.AssignedManagerID)
}

func TestPropertyCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	f.createProperty(t, "Blue Lagoon", 4)

	in := propertyInput(" blue lagoon ", 2)
	in.Street = "Other Street"
	_, err := f.properties.Create(f.ctx, f.admin, in)
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "name")

	in = propertyInput("Coral Court", 2)
	in.Type = "castle"
	_, err = f.properties.Create(f.ctx, f.admin, in)
	appErr = requireAppError(t, err, 400)
	errs := appErr.Details["errors"].(map[string][]string)
	require.Len(t, errs["type"], 1)
	assert.Contains(t, errs["type"][0], "castle")

	in = propertyInput("Coral Court", 2)
	in.Street = "Blue Lagoon Street"
	_, err = f.properties.Create(f.ctx, f.admin, in)
	appErr = requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "address")
}

func TestPropertyBulkCreate_DuplicateNames(t *testing.T) {
	f := newFixture(t)
	f.createProperty(t, "Blue Lagoon", 4)

	_, err := f.properties.BulkCreate(f.ctx, f.admin, []PropertyInput{
		propertyInput("Blue Lagoon", 2),
		propertyInput("Sand Dune", 2),
		propertyInput("sand dune", 2),
	})

	appErr := requireAppError(t, err, 400)
	assert.Equal(t, "Duplicate property names found", appErr.Message)
	assert.Equal(t, []string{"Blue Lagoon", "sand dune"}, appErr.Details["duplicate_names"])

	_, total, err := f.store.ListProperties(f.ctx, repository.PropertyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPropertyBulkCreate_AllOrNothing(t *testing.T) {
	f := newFixture(t)

	created, err := f.properties.BulkCreate(f.ctx, f.admin, []PropertyInput{
		propertyInput("Sand Dune", 2),
		propertyInput("Palm Grove", 3),
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	bad := propertyInput("Reef View", 2)
	bad.NumberOfFloors = 0
	_, err = f.properties.BulkCreate(f.ctx, f.admin, []PropertyInput{propertyInput("Lagoon Side", 2), bad})
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "properties[1].number_of_floors")

	_, total, err := f.store.ListProperties(f.ctx, repository.PropertyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPropertyDelete_RefusedWithUnits(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Blue Lagoon", 2)
	u, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, "101"))
	require.NoError(t, err)

	err = f.properties.Delete(f.ctx, f.admin, p.ID)
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, int64(1), appErr.Details["rental_units_count"])

	require.NoError(t, f.units.Delete(f.ctx, f.admin, u.ID))
	require.NoError(t, f.properties.Delete(f.ctx, f.admin, p.ID))

	_, err = f.properties.Get(f.ctx, f.admin, p.ID)
	requireAppError(t, err, 404)
}

func TestPropertyUpdate_QuotaNotBelowExistingUnits(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Blue Lagoon", 3)
	for _, n := range []string{"101", "102"} {
		_, err := f.units.Create(f.ctx, f.admin, unitInput(p.ID, n))
		require.NoError(t, err)
	}

	_, err := f.properties.Update(f.ctx, f.admin, p.ID, propertyInput("Blue Lagoon", 1))
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, map[string][]string{
		"number_of_rental_units": {"The number_of_rental_units field must be at least 2, the number of existing rental units."},
	}, appErr.Details["errors"])

	got, err := f.properties.Get(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumberOfRentalUnits)

	updated, err := f.properties.Update(f.ctx, f.admin, p.ID, propertyInput("Blue Lagoon", 2))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.NumberOfRentalUnits)
}

func TestPropertyCapacity(t *testing.T) {
	f := newFixture(t)
	p := f.createProperty(t, "Blue Lagoon", 3)

	in := unitInput(p.ID, "101")
	in.NumberOfRooms = 3
	in.NumberOfToilets = 1
	_, err := f.units.Create(f.ctx, f.admin, in)
	require.NoError(t, err)

	c, err := f.properties.Capacity(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Property.MaxUnits)
	assert.Equal(t, 1, c.Current.TotalUnits)
	assert.Equal(t, 2, c.Remaining.Units)
	assert.Equal(t, 1, c.Remaining.Rooms)
	assert.Equal(t, 2, c.Remaining.Toilets)
	assert.True(t, c.CanAddMore.Units)
}

func TestPropertyAccess_ManagerScope(t *testing.T) {
	f := newFixture(t)
	f.createProperty(t, "Blue Lagoon", 2)

	own, err := f.properties.Create(f.ctx, f.manager, propertyInput("Sand Dune", 2))
	require.NoError(t, err)
	require.NotNil(t, own.AssignedManagerID)
	assert.Equal(t, f.manager.ID, *own.AssignedManagerID)

	props, total, err := f.properties.List(f.ctx, f.manager, repository.PropertyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, props, 1)
	assert.Equal(t, "Sand Dune", props[0].Name)
}

func propertyCSVRequest(csv string, skipErrors bool) importer.Request {
	return importer.Request{
		CSVData: csv,
		FieldMapping: mapping(importer.FieldName, importer.FieldType, importer.FieldStreet, importer.FieldCity,
			importer.FieldIsland, importer.FieldNumberOfFloors, importer.FieldNumberOfRentalUnits,
			importer.FieldBedrooms, importer.FieldBathrooms),
		SkipErrors: skipErrors,
	}
}

const propertyHeader = "name,type,street,city,island,floors,units,bedrooms,bathrooms\n"

func TestPropertyImport_AbortsOnFirstBadRow(t *testing.T) {
	f := newFixture(t)
	csv := propertyHeader +
		"Sea Breeze,apartment,Majeedhee Magu,Male,Male,3,6,6,4\n" +
		"Sea Breeze,villa,Orchid Magu,Male,Male,1,1,2,2\n"

	res, err := f.properties.Import(f.ctx, f.admin, propertyCSVRequest(csv, false))

	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, []string{"Row 2: Property with name 'Sea Breeze' already exists"}, res.Errors)

	_, total, err := f.store.ListProperties(f.ctx, repository.PropertyFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPropertyImport_SkipErrors(t *testing.T) {
	f := newFixture(t)
	csv := propertyHeader +
		"Sea Breeze,apartment,Majeedhee Magu,Male,Male,3,6,6,4\n" +
		"Palm Court,castle,Orchid Magu,Male,Male,1,1,2,2\n" +
		"Coral Heights,Villa,Chandhanee Magu,Male,Male,2,2,4,3\n"

	res, err := f.properties.Import(f.ctx, f.manager, propertyCSVRequest(csv, true))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 2:")

	props, _, err := f.properties.List(f.ctx, f.manager, repository.PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 2)
}
