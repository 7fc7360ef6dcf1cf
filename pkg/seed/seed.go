package seed

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/logger"
)

type typeSeed struct {
	name        string
	description string
}

var propertyTypes = []typeSeed{
	{"Apartment", "Apartment building with residential flats"},
	{"Villa", "Standalone villa"},
	{"House", "Single-family residential house"},
	{"Apartment Building", "A multi-story building with multiple residential units"},
	{"Commercial Building", "A building primarily for business/commercial use"},
	{"Residential Complex", "A collection of residential buildings"},
	{"Mixed-Use Building", "A building with both residential and commercial spaces"},
	{"Office Building", "A building designed for office spaces"},
	{"Retail Complex", "A shopping center or mall"},
	{"Industrial Complex", "Warehouses and industrial facilities"},
	{"Villa Complex", "A collection of luxury villas"},
}

var unitTypes = []typeSeed{
	{"Residential", "Standard residential unit"},
	{"Studio", "Small residential unit without separate bedroom"},
	{"1BR", "One bedroom residential unit"},
	{"2BR", "Two bedroom residential unit"},
	{"3BR", "Three bedroom residential unit"},
	{"Penthouse", "Luxury top-floor unit"},
	{"Office", "Office space"},
	{"Retail/Shop", "Retail store or shop space"},
	{"Warehouse", "Storage or warehouse space"},
	{"Other", "Any other specialized unit type"},
}

var defaultAssets = []model.Asset{
	{Name: "Air Conditioner", Category: model.AssetCategoryHVAC},
	{Name: "Refrigerator", Category: model.AssetCategoryAppliance},
	{Name: "Washing Machine", Category: model.AssetCategoryAppliance},
	{Name: "Water Heater", Category: model.AssetCategoryPlumbing},
	{Name: "Television", Category: model.AssetCategoryElectronics},
	{Name: "Sofa", Category: model.AssetCategoryFurniture},
	{Name: "Bed", Category: model.AssetCategoryFurniture},
	{Name: "Dining Table", Category: model.AssetCategoryFurniture},
}

// Run seeds lookup data and the first admin. Existing rows are left alone.
func Run(ctx context.Context, store repository.Store, cfg config.SeedConfig) error {
	if err := SeedRentalUnitTypes(ctx, store); err != nil {
		return err
	}
	if err := SeedAssets(ctx, store); err != nil {
		return err
	}
	return SeedAdmin(ctx, store, cfg)
}

func SeedRentalUnitTypes(ctx context.Context, store repository.Store) error {
	existing, err := store.ListRentalUnitTypes(ctx, repository.TypeFilter{})
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, t := range existing {
		seen[string(t.Category)+"/"+strings.ToLower(t.Name)] = true
	}

	created := 0
	add := func(category model.TypeCategory, seeds []typeSeed) error {
		for _, s := range seeds {
			if seen[string(category)+"/"+strings.ToLower(s.name)] {
				continue
			}
			t := &model.RentalUnitType{Name: s.name, Category: category, Description: s.description, IsActive: true}
			if err := store.SaveRentalUnitType(ctx, t); err != nil {
				return err
			}
			created++
		}
		return nil
	}
	if err := add(model.TypeCategoryProperty, propertyTypes); err != nil {
		return err
	}
	if err := add(model.TypeCategoryUnit, unitTypes); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Rental unit types seeded", zap.Int("created", created))
	return nil
}

// SeedAssets only runs against an empty asset catalogue.
func SeedAssets(ctx context.Context, store repository.Store) error {
	existing, err := store.ListAssets(ctx, repository.AssetFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, a := range defaultAssets {
		asset := a
		asset.Status = model.AssetStatusWorking
		if err := store.CreateAsset(ctx, &asset); err != nil {
			return err
		}
	}
	logger.FromContext(ctx).Info("Default assets seeded", zap.Int("created", len(defaultAssets)))
	return nil
}

func SeedAdmin(ctx context.Context, store repository.Store, cfg config.SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := store.GetUserByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	}

	hashed, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:    cfg.AdminEmail,
		Password: hashed,
		Name:     "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Admin user created", zap.String("email", admin.Email))
	return nil
}
