// Package refdata is the single source of enumerated values (categories,
// statuses, unit and property types) used by request validation, CSV import
// validation and the CSV templates.
package refdata

import (
	"context"
	"fmt"
	"strings"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/validation"
)

// Domain names
const (
	AssetCategory  = "category"
	AssetStatus    = "asset_status"
	UnitType       = "unit_type"
	UnitStatus     = "unit_status"
	PropertyStatus = "property_status"
	PropertyType   = "property_type"
	TypeCategory   = "type_category"
)

var (
	assetCategories = []string{
		string(model.AssetCategoryFurniture),
		string(model.AssetCategoryAppliance),
		string(model.AssetCategoryElectronics),
		string(model.AssetCategoryPlumbing),
		string(model.AssetCategoryElectrical),
		string(model.AssetCategoryHVAC),
		string(model.AssetCategorySecurity),
		string(model.AssetCategoryOther),
	}
	assetStatuses = []string{
		string(model.AssetStatusWorking),
		string(model.AssetStatusFaulty),
		string(model.AssetStatusMaintenance),
		string(model.AssetStatusRetired),
	}
	unitTypes = []string{
		string(model.UnitTypeResidential),
		string(model.UnitTypeOffice),
		string(model.UnitTypeShop),
		string(model.UnitTypeWarehouse),
		string(model.UnitTypeOther),
	}
	unitStatuses = []string{
		string(model.UnitStatusAvailable),
		string(model.UnitStatusOccupied),
		string(model.UnitStatusMaintenance),
		string(model.UnitStatusRenovation),
		string(model.UnitStatusDeactivated),
	}
	propertyStatuses = []string{
		string(model.PropertyStatusOccupied),
		string(model.PropertyStatusVacant),
		string(model.PropertyStatusMaintenance),
		string(model.PropertyStatusRenovation),
	}
	typeCategories = []string{
		string(model.TypeCategoryProperty),
		string(model.TypeCategoryUnit),
	}

	// fixed domains; property types live in the database
	fixed = map[string][]string{
		AssetCategory:  assetCategories,
		AssetStatus:    assetStatuses,
		UnitType:       unitTypes,
		UnitStatus:     unitStatuses,
		PropertyStatus: propertyStatuses,
		TypeCategory:   typeCategories,
	}
)

func init() {
	validation.RegisterEnums(fixedEnums{})
}

// Values returns the allowed values of a fixed domain.
func Values(domain string) []string {
	return clone(fixed[domain])
}

// Canonical matches value against a fixed domain and returns its canonical
// spelling.
func Canonical(domain, value string) (string, bool) {
	return Match(fixed[domain], value)
}

type fixedEnums struct{}

func (fixedEnums) Values(domain string) []string             { return Values(domain) }
func (fixedEnums) Match(domain, value string) (string, bool) { return Canonical(domain, value) }

// TypeLister reads the managed rental unit type table.
type TypeLister interface {
	ListRentalUnitTypes(ctx context.Context, filter repository.TypeFilter) ([]model.RentalUnitType, error)
}

type Service struct {
	types TypeLister
}

func New(types TypeLister) *Service {
	return &Service{types: types}
}

func (s *Service) AssetCategories() []string  { return clone(assetCategories) }
func (s *Service) AssetStatuses() []string    { return clone(assetStatuses) }
func (s *Service) UnitTypes() []string        { return clone(unitTypes) }
func (s *Service) UnitStatuses() []string     { return clone(unitStatuses) }
func (s *Service) PropertyStatuses() []string { return clone(propertyStatuses) }

// PropertyTypes returns the names of active types in the property category.
func (s *Service) PropertyTypes(ctx context.Context) ([]string, error) {
	types, err := s.types.ListRentalUnitTypes(ctx, repository.TypeFilter{
		Category:   string(model.TypeCategoryProperty),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names, nil
}

// All returns every domain keyed by name, for the dashboard dropdowns.
func (s *Service) All(ctx context.Context) (map[string][]string, error) {
	propertyTypes, err := s.PropertyTypes(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]string{
		AssetCategory:  s.AssetCategories(),
		AssetStatus:    s.AssetStatuses(),
		UnitType:       s.UnitTypes(),
		UnitStatus:     s.UnitStatuses(),
		PropertyStatus: s.PropertyStatuses(),
		PropertyType:   propertyTypes,
	}, nil
}

// Match finds value in allowed ignoring case and surrounding whitespace and
// returns the canonical spelling.
func Match(allowed []string, value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a, true
		}
	}
	return "", false
}

// InvalidMessage "Invalid category 'x'. Must be one of: a, b"
func InvalidMessage(field, value string, allowed []string) string {
	return fmt.Sprintf("Invalid %s '%s'. Must be one of: %s", field, value, strings.Join(allowed, ", "))
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
