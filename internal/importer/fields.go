// Package importer turns pasted or uploaded CSV data into validated entity
// drafts and commits them in a single transaction.
package importer

// Field is a target attribute a CSV column can be mapped to.
type Field string

// Property fields
const (
	FieldName                Field = "name"
	FieldType                Field = "type"
	FieldStreet              Field = "street"
	FieldCity                Field = "city"
	FieldIsland              Field = "island"
	FieldPostalCode          Field = "postal_code"
	FieldCountry             Field = "country"
	FieldNumberOfFloors      Field = "number_of_floors"
	FieldNumberOfRentalUnits Field = "number_of_rental_units"
	FieldBedrooms            Field = "bedrooms"
	FieldBathrooms           Field = "bathrooms"
	FieldSquareFeet          Field = "square_feet"
	FieldYearBuilt           Field = "year_built"
	FieldDescription         Field = "description"
	FieldStatus              Field = "status"
)

// Asset fields
const (
	FieldBrand    Field = "brand"
	FieldSerialNo Field = "serial_no"
	FieldCategory Field = "category"
)

// Rental unit fields
const (
	FieldUnitNumber                Field = "unit_number"
	FieldUnitType                  Field = "unit_type"
	FieldFloorNumber               Field = "floor_number"
	FieldNumberOfRooms             Field = "number_of_rooms"
	FieldNumberOfToilets           Field = "number_of_toilets"
	FieldRentAmount                Field = "rent_amount"
	FieldDepositAmount             Field = "deposit_amount"
	FieldCurrency                  Field = "currency"
	FieldWaterMeterNumber          Field = "water_meter_number"
	FieldWaterBillingAccount       Field = "water_billing_account"
	FieldElectricityMeterNumber    Field = "electricity_meter_number"
	FieldElectricityBillingAccount Field = "electricity_billing_account"
	FieldAccessCardNumbers         Field = "access_card_numbers"
	FieldNotes                     Field = "notes"
)

// Entity names the kind of record an import produces.
type Entity string

const (
	EntityProperty   Entity = "property"
	EntityAsset      Entity = "asset"
	EntityRentalUnit Entity = "rental_unit"
)

type fieldSpec struct {
	field    Field
	required bool
}

// field order doubles as template column order
var entityFields = map[Entity][]fieldSpec{
	EntityProperty: {
		{FieldName, true},
		{FieldType, true},
		{FieldStreet, true},
		{FieldCity, true},
		{FieldIsland, true},
		{FieldPostalCode, false},
		{FieldCountry, false},
		{FieldNumberOfFloors, true},
		{FieldNumberOfRentalUnits, true},
		{FieldBedrooms, true},
		{FieldBathrooms, true},
		{FieldSquareFeet, false},
		{FieldYearBuilt, false},
		{FieldDescription, false},
		{FieldStatus, false},
	},
	EntityAsset: {
		{FieldName, true},
		{FieldBrand, false},
		{FieldSerialNo, false},
		{FieldCategory, true},
		{FieldStatus, false},
	},
	EntityRentalUnit: {
		{FieldUnitNumber, true},
		{FieldUnitType, false},
		{FieldFloorNumber, false},
		{FieldNumberOfRooms, false},
		{FieldNumberOfToilets, false},
		{FieldSquareFeet, false},
		{FieldRentAmount, true},
		{FieldDepositAmount, false},
		{FieldCurrency, true},
		{FieldStatus, false},
		{FieldWaterMeterNumber, false},
		{FieldWaterBillingAccount, false},
		{FieldElectricityMeterNumber, false},
		{FieldElectricityBillingAccount, false},
		{FieldAccessCardNumbers, false},
		{FieldNotes, false},
	},
}

// Fields returns the entity's importable fields in template order.
func (e Entity) Fields() []Field {
	specs := entityFields[e]
	out := make([]Field, len(specs))
	for i, s := range specs {
		out[i] = s.field
	}
	return out
}

// Required returns the fields every row must carry.
func (e Entity) Required() []Field {
	var out []Field
	for _, s := range entityFields[e] {
		if s.required {
			out = append(out, s.field)
		}
	}
	return out
}

func (e Entity) Allows(f Field) bool {
	for _, s := range entityFields[e] {
		if s.field == f {
			return true
		}
	}
	return false
}

func (e Entity) isRequired(f Field) bool {
	for _, s := range entityFields[e] {
		if s.field == f {
			return s.required
		}
	}
	return false
}
