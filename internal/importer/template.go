package importer

import (
	"strings"

	"rentdesk_backend/internal/model"
)

// Template is the downloadable CSV skeleton for an entity.
type Template struct {
	Template string   `json:"template"`
	Headers  []string `json:"headers"`
}

var templateSamples = map[Entity][]map[Field]string{
	EntityProperty: {
		{
			FieldName: "Sample Property 1", FieldType: "apartment", FieldStreet: "123 Main Street",
			FieldCity: "Male", FieldIsland: "Male", FieldPostalCode: "20001", FieldCountry: "Maldives",
			FieldNumberOfFloors: "2", FieldNumberOfRentalUnits: "4", FieldBedrooms: "2", FieldBathrooms: "2",
			FieldSquareFeet: "1200", FieldYearBuilt: "2020", FieldDescription: "Beautiful property", FieldStatus: "vacant",
		},
		{
			FieldName: "Sample Property 2", FieldType: "villa", FieldStreet: "456 Ocean View",
			FieldCity: "Hulhumale", FieldIsland: "Male", FieldPostalCode: "20002", FieldCountry: "Maldives",
			FieldNumberOfFloors: "1", FieldNumberOfRentalUnits: "1", FieldBedrooms: "3", FieldBathrooms: "2",
			FieldSquareFeet: "1800", FieldYearBuilt: "2018", FieldDescription: "Villa with a sea view", FieldStatus: "vacant",
		},
	},
	EntityAsset: {
		{FieldName: "Air Conditioner", FieldBrand: "Daikin", FieldSerialNo: "AC-001", FieldCategory: "hvac", FieldStatus: "working"},
		{FieldName: "Refrigerator", FieldBrand: "LG", FieldSerialNo: "RF-002", FieldCategory: "appliance", FieldStatus: "working"},
	},
	EntityRentalUnit: {
		{
			FieldUnitNumber: "101", FieldUnitType: "residential", FieldFloorNumber: "1", FieldNumberOfRooms: "2",
			FieldNumberOfToilets: "1", FieldSquareFeet: "650", FieldRentAmount: "8500", FieldDepositAmount: "8500",
			FieldCurrency: "MVR", FieldStatus: "available", FieldWaterMeterNumber: "WM-101",
			FieldElectricityMeterNumber: "EM-101", FieldAccessCardNumbers: "C-1001,C-1002", FieldNotes: "Corner unit",
		},
		{
			FieldUnitNumber: "G01", FieldUnitType: "shop", FieldFloorNumber: "1", FieldNumberOfRooms: "1",
			FieldNumberOfToilets: "1", FieldSquareFeet: "400", FieldRentAmount: "12000", FieldDepositAmount: "24000",
			FieldCurrency: "MVR", FieldStatus: "available",
		},
	},
}

func (v *Validator) instructions(e Entity) string {
	switch e {
	case EntityProperty:
		return "INSTRUCTIONS: Fields marked with [REQUIRED] must be filled. Type must match a valid property type from the system."
	case EntityAsset:
		return "INSTRUCTIONS: Fields marked with [REQUIRED] must be filled. Category must be one of: " +
			strings.Join(v.ref.AssetCategories(), ", ") + " (defaults to other). Status must be one of: " +
			strings.Join(v.ref.AssetStatuses(), ", ") + " (defaults to working if not provided)."
	default:
		return "INSTRUCTIONS: Fields marked with [REQUIRED] must be filled. Unit type must be one of: " +
			strings.Join(v.ref.UnitTypes(), ", ") + ". Status must be one of: " +
			strings.Join(withoutOccupied(v.ref.UnitStatuses()), ", ") + ". Separate access card numbers with commas."
	}
}

func withoutOccupied(statuses []string) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s != string(model.UnitStatusOccupied) {
			out = append(out, s)
		}
	}
	return out
}

// Template builds the instruction line, the header line with required
// columns marked, and two sample rows. Every cell is quoted.
func (v *Validator) Template(e Entity) Template {
	fields := e.Fields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = string(f)
		if e.isRequired(f) {
			headers[i] += " [REQUIRED]"
		}
	}

	var b strings.Builder
	writeQuoted(&b, []string{v.instructions(e)})
	writeQuoted(&b, headers)
	for _, sample := range templateSamples[e] {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = sample[f]
		}
		writeQuoted(&b, row)
	}

	return Template{Template: b.String(), Headers: headers}
}

func writeQuoted(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
