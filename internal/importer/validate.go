package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
)

// PreviewRows is how many data rows a preview validates.
const PreviewRows = 10

// PropertyDraft is a validated property row with defaults applied.
type PropertyDraft struct {
	Name                string               `json:"name"`
	Type                string               `json:"type"`
	Street              string               `json:"street"`
	City                string               `json:"city"`
	Island              string               `json:"island"`
	PostalCode          string               `json:"postal_code,omitempty"`
	Country             string               `json:"country"`
	NumberOfFloors      int                  `json:"number_of_floors"`
	NumberOfRentalUnits int                  `json:"number_of_rental_units"`
	Bedrooms            int                  `json:"bedrooms"`
	Bathrooms           int                  `json:"bathrooms"`
	SquareFeet          *int                 `json:"square_feet,omitempty"`
	YearBuilt           *int                 `json:"year_built,omitempty"`
	Description         string               `json:"description,omitempty"`
	Status              model.PropertyStatus `json:"status"`
}

func (d PropertyDraft) ToModel(managerID *uint) *model.Property {
	return &model.Property{
		Name:                d.Name,
		Type:                d.Type,
		Street:              d.Street,
		City:                d.City,
		Island:              d.Island,
		PostalCode:          d.PostalCode,
		Country:             d.Country,
		Description:         d.Description,
		Status:              d.Status,
		NumberOfFloors:      d.NumberOfFloors,
		NumberOfRentalUnits: d.NumberOfRentalUnits,
		Bedrooms:            d.Bedrooms,
		Bathrooms:           d.Bathrooms,
		SquareFeet:          d.SquareFeet,
		YearBuilt:           d.YearBuilt,
		AssignedManagerID:   managerID,
		IsActive:            true,
	}
}

// AssetDraft is a validated asset row with defaults applied.
type AssetDraft struct {
	Name     string              `json:"name"`
	Brand    string              `json:"brand,omitempty"`
	SerialNo *string             `json:"serial_no"`
	Category model.AssetCategory `json:"category"`
	Status   model.AssetStatus   `json:"status"`
}

func (d AssetDraft) ToModel() *model.Asset {
	return &model.Asset{
		Name:     d.Name,
		Brand:    d.Brand,
		SerialNo: d.SerialNo,
		Category: d.Category,
		Status:   d.Status,
	}
}

// UnitDraft is a validated rental unit row with defaults applied.
type UnitDraft struct {
	UnitNumber                string                 `json:"unit_number"`
	UnitType                  model.UnitType         `json:"unit_type"`
	FloorNumber               int                    `json:"floor_number"`
	NumberOfRooms             int                    `json:"number_of_rooms"`
	NumberOfToilets           int                    `json:"number_of_toilets"`
	SquareFeet                *float64               `json:"square_feet,omitempty"`
	RentAmount                decimal.Decimal        `json:"rent_amount"`
	DepositAmount             decimal.Decimal        `json:"deposit_amount"`
	Currency                  string                 `json:"currency"`
	Status                    model.RentalUnitStatus `json:"status"`
	WaterMeterNumber          string                 `json:"water_meter_number,omitempty"`
	WaterBillingAccount       string                 `json:"water_billing_account,omitempty"`
	ElectricityMeterNumber    string                 `json:"electricity_meter_number,omitempty"`
	ElectricityBillingAccount string                 `json:"electricity_billing_account,omitempty"`
	AccessCardNumbers         string                 `json:"access_card_numbers,omitempty"`
	Notes                     string                 `json:"notes,omitempty"`
}

// Validator checks mapped records against the shared reference data.
type Validator struct {
	ref *refdata.Service
	now func() time.Time
}

func NewValidator(ref *refdata.Service) *Validator {
	return &Validator{ref: ref, now: time.Now}
}

// rowCheck collects problems for one record.
type rowCheck struct {
	rec      Record
	problems []string
}

func (c *rowCheck) fail(format string, args ...interface{}) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

func (c *rowCheck) required(fields []Field) {
	for _, f := range fields {
		if c.rec.Get(f) == "" {
			c.fail("Missing required field '%s'", f)
		}
	}
}

func (c *rowCheck) enum(f Field, label string, allowed []string, def string) string {
	raw := c.rec.Get(f)
	if raw == "" {
		return def
	}
	v, ok := refdata.Match(allowed, raw)
	if !ok {
		c.problems = append(c.problems, refdata.InvalidMessage(label, raw, allowed))
		return def
	}
	return v
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

func (c *rowCheck) number(f Field) (float64, bool) {
	raw := c.rec.Get(f)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(raw, ""), 64)
	if err != nil {
		c.fail("Field '%s' must be numeric (got: '%s')", f, raw)
		return 0, false
	}
	return n, true
}

func (c *rowCheck) integer(f Field, def, min int) int {
	n, ok := c.number(f)
	if !ok {
		return def
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		c.fail("Field '%s' is out of range (got: '%s')", f, c.rec.Get(f))
		return def
	}
	v := int(n)
	if v < min {
		c.fail("Field '%s' must be at least %d", f, min)
	}
	return v
}

func (c *rowCheck) optionalInt(f Field, min int) *int {
	if c.rec.Get(f) == "" {
		return nil
	}
	v := c.integer(f, 0, min)
	return &v
}

func (c *rowCheck) money(f Field) decimal.Decimal {
	raw := c.rec.Get(f)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(nonNumeric.ReplaceAllString(raw, ""))
	if err != nil {
		c.fail("Field '%s' must be numeric (got: '%s')", f, raw)
		return decimal.Zero
	}
	if d.IsNegative() {
		c.fail("Field '%s' must be at least 0", f)
	}
	return d
}

// Property validates one property row. propertyTypes are the names of the
// active property types.
func (v *Validator) Property(rec Record, propertyTypes []string) (PropertyDraft, []string) {
	c := &rowCheck{rec: rec}
	c.required(EntityProperty.Required())

	d := PropertyDraft{
		Name:        rec.Get(FieldName),
		Street:      rec.Get(FieldStreet),
		City:        rec.Get(FieldCity),
		Island:      rec.Get(FieldIsland),
		PostalCode:  rec.Get(FieldPostalCode),
		Country:     rec.Get(FieldCountry),
		Description: rec.Get(FieldDescription),
	}
	if d.Country == "" {
		d.Country = model.DefaultCountry
	}
	if rec.Get(FieldType) != "" {
		d.Type = c.enum(FieldType, "type", propertyTypes, "")
	}
	d.Status = model.PropertyStatus(c.enum(FieldStatus, "status", v.ref.PropertyStatuses(), string(model.PropertyStatusVacant)))

	d.NumberOfFloors = c.integer(FieldNumberOfFloors, 0, 1)
	d.NumberOfRentalUnits = c.integer(FieldNumberOfRentalUnits, 0, 1)
	d.Bedrooms = c.integer(FieldBedrooms, 0, 1)
	d.Bathrooms = c.integer(FieldBathrooms, 0, 1)
	d.SquareFeet = c.optionalInt(FieldSquareFeet, 0)

	if year := c.optionalInt(FieldYearBuilt, 0); year != nil {
		current := v.now().Year()
		if *year < 1800 || *year > current {
			c.fail("Field 'year_built' must be between 1800 and %d", current)
		}
		d.YearBuilt = year
	}

	return d, c.problems
}

// Asset validates one asset row.
func (v *Validator) Asset(rec Record) (AssetDraft, []string) {
	c := &rowCheck{rec: rec}
	c.required(EntityAsset.Required())

	d := AssetDraft{
		Name:     rec.Get(FieldName),
		Brand:    rec.Get(FieldBrand),
		Category: model.AssetCategory(c.enum(FieldCategory, "category", v.ref.AssetCategories(), "")),
		Status:   model.AssetStatus(c.enum(FieldStatus, "status", v.ref.AssetStatuses(), string(model.AssetStatusWorking))),
	}
	if serial := rec.Get(FieldSerialNo); serial != "" {
		d.SerialNo = &serial
	}
	return d, c.problems
}

// RentalUnit validates one rental unit row. Imported units never carry a
// tenant, so the occupied status is refused.
func (v *Validator) RentalUnit(rec Record) (UnitDraft, []string) {
	c := &rowCheck{rec: rec}
	c.required(EntityRentalUnit.Required())

	d := UnitDraft{
		UnitNumber:                rec.Get(FieldUnitNumber),
		UnitType:                  model.UnitType(c.enum(FieldUnitType, "unit_type", v.ref.UnitTypes(), string(model.UnitTypeResidential))),
		Status:                    model.RentalUnitStatus(c.enum(FieldStatus, "status", v.ref.UnitStatuses(), string(model.UnitStatusAvailable))),
		Currency:                  strings.ToUpper(rec.Get(FieldCurrency)),
		WaterMeterNumber:          rec.Get(FieldWaterMeterNumber),
		WaterBillingAccount:       rec.Get(FieldWaterBillingAccount),
		ElectricityMeterNumber:    rec.Get(FieldElectricityMeterNumber),
		ElectricityBillingAccount: rec.Get(FieldElectricityBillingAccount),
		AccessCardNumbers:         strings.Join(model.ParseCardNumbers(rec.Get(FieldAccessCardNumbers)), ","),
		Notes:                     rec.Get(FieldNotes),
	}
	if d.Status == model.UnitStatusOccupied {
		c.fail("Status 'occupied' requires a tenant and cannot be imported")
	}

	d.FloorNumber = c.integer(FieldFloorNumber, 1, 1)
	d.NumberOfRooms = c.integer(FieldNumberOfRooms, 0, 0)
	d.NumberOfToilets = c.integer(FieldNumberOfToilets, 0, 0)
	if sq, ok := c.number(FieldSquareFeet); ok {
		if sq < 0 {
			c.fail("Field 'square_feet' must be at least 0")
		}
		d.SquareFeet = &sq
	}
	d.RentAmount = c.money(FieldRentAmount)
	d.DepositAmount = c.money(FieldDepositAmount)

	return d, c.problems
}
