package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/validation"
)

const dateLayout = "2006-01-02"

type UnitAssetInput struct {
	AssetID          uint    `json:"asset_id" validate:"required"`
	Quantity         int     `json:"quantity" validate:"omitempty,min=1"`
	SerialNumbers    string  `json:"serial_numbers"`
	AssetLocation    string  `json:"asset_location" validate:"max=255"`
	InstallationDate *string `json:"installation_date" validate:"omitempty,datetime=2006-01-02"`
	Status           string  `json:"status" validate:"omitempty,enum=asset_status"`
	Notes            string  `json:"notes"`
}

type UnitInput struct {
	PropertyID                uint             `json:"property_id"`
	UnitNumber                string           `json:"unit_number" validate:"required,max=50"`
	UnitType                  string           `json:"unit_type" validate:"omitempty,enum=unit_type"`
	FloorNumber               int              `json:"floor_number" validate:"omitempty,min=1"`
	NumberOfRooms             int              `json:"number_of_rooms" validate:"min=0"`
	NumberOfToilets           int              `json:"number_of_toilets" validate:"min=0"`
	SquareFeet                *float64         `json:"square_feet" validate:"omitempty,min=0"`
	RentAmount                *decimal.Decimal `json:"rent_amount" validate:"required"`
	DepositAmount             *decimal.Decimal `json:"deposit_amount"`
	Currency                  string           `json:"currency" validate:"required,max=10"`
	WaterMeterNumber          string           `json:"water_meter_number" validate:"max=100"`
	WaterBillingAccount       string           `json:"water_billing_account" validate:"max=100"`
	ElectricityMeterNumber    string           `json:"electricity_meter_number" validate:"max=100"`
	ElectricityBillingAccount string           `json:"electricity_billing_account" validate:"max=100"`
	AccessCardNumbers         string           `json:"access_card_numbers"`
	Status                    string           `json:"status" validate:"omitempty,enum=unit_status"`
	TenantID                  *uint            `json:"tenant_id" validate:"omitempty,min=1"`
	MoveInDate                *string          `json:"move_in_date" validate:"omitempty,datetime=2006-01-02"`
	LeaseEndDate              *string          `json:"lease_end_date" validate:"omitempty,datetime=2006-01-02"`
	Amenities                 datatypes.JSON   `json:"amenities"`
	Photos                    datatypes.JSON   `json:"photos"`
	Notes                     string           `json:"notes"`
	Assets                    []UnitAssetInput `json:"assets" validate:"omitempty,dive"`
}

type BulkUnitsRequest struct {
	PropertyID uint        `json:"property_id"`
	Units      []UnitInput `json:"units"`
}

type UnitStatusInput struct {
	Status   string `json:"status" validate:"required,enum=unit_status"`
	TenantID *uint  `json:"tenant_id" validate:"omitempty,min=1"`
}

// UnitImportRequest is the CSV variant of bulk creation.
type UnitImportRequest struct {
	importer.Request
	PropertyID uint `json:"property_id"`
}

type RentalUnitService struct {
	store     repository.Store
	validator *importer.Validator
	audit     *ImportAudit
	now       func() time.Time
}

func NewRentalUnitService(store repository.Store, ref *refdata.Service, audit *ImportAudit) *RentalUnitService {
	return &RentalUnitService{
		store:     store,
		validator: importer.NewValidator(ref),
		audit:     audit,
		now:       time.Now,
	}
}

func (s *RentalUnitService) List(ctx context.Context, user *model.User, filter repository.UnitFilter) ([]model.RentalUnit, error) {
	if filter.PropertyID != nil {
		p, err := s.store.GetProperty(ctx, *filter.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := checkAccess(user, p); err != nil {
			return nil, err
		}
	}
	filter.ManagerID = managerScope(user)
	return s.store.ListRentalUnits(ctx, filter)
}

func (s *RentalUnitService) Get(ctx context.Context, user *model.User, id uint) (*model.RentalUnit, error) {
	u, err := s.store.GetRentalUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetProperty(ctx, u.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(user, p); err != nil {
		return nil, err
	}
	return u, nil
}

func capacityError(p *model.Property, existing int64, requested int) error {
	remaining := p.RemainingUnits(existing)
	if remaining < 0 {
		remaining = 0
	}
	return apperror.BadRequest(
		fmt.Sprintf("Cannot create %d rental unit(s). Property \"%s\" only has %d unit(s) remaining (maximum capacity: %d, existing: %d).",
			requested, p.Name, remaining, p.NumberOfRentalUnits, existing),
		map[string]interface{}{
			"property_name":   p.Name,
			"max_units":       p.NumberOfRentalUnits,
			"existing_units":  existing,
			"remaining_units": remaining,
			"requested_units": requested,
		})
}

// validateUnit checks one unit and adds messages to errs under prefix.
func validateUnit(in *UnitInput, prefix string, errs map[string][]string) {
	for k, v := range validation.Struct(in) {
		errs[prefix+k] = append(errs[prefix+k], v...)
	}
	if in.UnitType != "" {
		in.UnitType = canonical(refdata.UnitType, in.UnitType)
	}
	if in.Status != "" {
		in.Status = canonical(refdata.UnitStatus, in.Status)
	}
	add := func(field, msg string) {
		errs[prefix+field] = append(errs[prefix+field], msg)
	}

	if in.RentAmount != nil && in.RentAmount.IsNegative() {
		add("rent_amount", "The rent_amount field must be at least 0.")
	}
	if in.DepositAmount != nil && in.DepositAmount.IsNegative() {
		add("deposit_amount", "The deposit_amount field must be at least 0.")
	}

	status := in.Status
	if status == "" {
		status = string(model.UnitStatusAvailable)
	}
	if status == string(model.UnitStatusOccupied) && in.TenantID == nil {
		add("tenant_id", "The tenant_id field is required when status is occupied.")
	}
	if status != string(model.UnitStatusOccupied) && in.TenantID != nil {
		add("status", "The status must be occupied when a tenant is assigned.")
	}

	if in.MoveInDate != nil && in.LeaseEndDate != nil {
		moveIn, err1 := time.Parse(dateLayout, *in.MoveInDate)
		leaseEnd, err2 := time.Parse(dateLayout, *in.LeaseEndDate)
		if err1 == nil && err2 == nil && !leaseEnd.After(moveIn) {
			add("lease_end_date", "The lease_end_date field must be a date after move_in_date.")
		}
	}
}

func parseDate(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil
	}
	return &t
}

func (in UnitInput) toModel(u *model.RentalUnit) {
	u.UnitNumber = strings.TrimSpace(in.UnitNumber)
	u.UnitType = model.UnitType(in.UnitType)
	if u.UnitType == "" {
		u.UnitType = model.UnitTypeResidential
	}
	u.FloorNumber = in.FloorNumber
	if u.FloorNumber == 0 {
		u.FloorNumber = 1
	}
	u.NumberOfRooms = in.NumberOfRooms
	u.NumberOfToilets = in.NumberOfToilets
	u.SquareFeet = in.SquareFeet
	u.RentAmount = *in.RentAmount
	u.DepositAmount = decimal.Zero
	if in.DepositAmount != nil {
		u.DepositAmount = *in.DepositAmount
	}
	u.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	u.WaterMeterNumber = in.WaterMeterNumber
	u.WaterBillingAccount = in.WaterBillingAccount
	u.ElectricityMeterNumber = in.ElectricityMeterNumber
	u.ElectricityBillingAccount = in.ElectricityBillingAccount
	u.Status = model.RentalUnitStatus(in.Status)
	if u.Status == "" {
		u.Status = model.UnitStatusAvailable
	}
	u.TenantID = in.TenantID
	u.MoveInDate = parseDate(in.MoveInDate)
	u.LeaseEndDate = parseDate(in.LeaseEndDate)
	u.Amenities = in.Amenities
	u.Photos = in.Photos
	u.Notes = in.Notes
	u.SetCards(model.ParseCardNumbers(in.AccessCardNumbers))
}

func duplicatesOf(values []string) []string {
	seen := map[string]int{}
	var dups []string
	for _, v := range values {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}

// checkCollisions rejects unit numbers and access cards that repeat inside
// the batch or already exist. excludeUnitID skips the unit being updated.
func checkCollisions(ctx context.Context, tx repository.Store, propertyID uint, units []UnitInput, excludeUnitID uint) error {
	numbers := make([]string, len(units))
	for i, u := range units {
		numbers[i] = strings.TrimSpace(u.UnitNumber)
	}

	if dups := duplicatesOf(numbers); len(dups) > 0 {
		msgs := make([]string, len(dups))
		for i, d := range dups {
			msgs[i] = fmt.Sprintf("Unit number '%s' appears more than once in the request.", d)
		}
		return apperror.BadRequest("Duplicate unit numbers found within the request", map[string]interface{}{
			"errors":          map[string][]string{"units": msgs},
			"duplicate_units": dups,
		})
	}

	existing, err := tx.ExistingUnitNumbers(ctx, propertyID, numbers, excludeUnitID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		msgs := make([]string, len(existing))
		for i, d := range existing {
			msgs[i] = fmt.Sprintf("Unit number '%s' already exists for this property.", d)
		}
		return apperror.BadRequest("Some unit numbers already exist for this property", map[string]interface{}{
			"errors":          map[string][]string{"units": msgs},
			"duplicate_units": existing,
		})
	}

	var cards []string
	for _, u := range units {
		cards = append(cards, model.ParseCardNumbers(u.AccessCardNumbers)...)
	}
	taken := duplicatesOf(cards)
	assigned, err := tx.TakenAccessCards(ctx, cards, excludeUnitID)
	if err != nil {
		return err
	}
	for _, c := range assigned {
		if !contains(taken, c) {
			taken = append(taken, c)
		}
	}
	if len(taken) > 0 {
		sort.Strings(taken)
		msgs := make([]string, len(taken))
		for i, c := range taken {
			msgs[i] = fmt.Sprintf("Access card '%s' is already assigned.", c)
		}
		return apperror.BadRequest("Some access card numbers are already assigned", map[string]interface{}{
			"errors":                 map[string][]string{"access_card_numbers": msgs},
			"duplicate_access_cards": taken,
		})
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// BulkCreate creates every unit or none. Inside one transaction it locks the
// property row, checks the unit quota, validates each unit, then rejects
// unit number and access card collisions.
func (s *RentalUnitService) BulkCreate(ctx context.Context, user *model.User, req BulkUnitsRequest) ([]model.RentalUnit, error) {
	if req.PropertyID == 0 {
		return nil, apperror.Validation(map[string][]string{"property_id": {"The property_id field is required."}})
	}
	if len(req.Units) == 0 {
		return nil, apperror.Validation(map[string][]string{"units": {"The units field must have at least 1 items."}})
	}
	return s.create(ctx, user, req.PropertyID, req.Units, func(i int) string { return fmt.Sprintf("units[%d].", i) })
}

// Create is a bulk creation with a batch of one.
func (s *RentalUnitService) Create(ctx context.Context, user *model.User, in UnitInput) (*model.RentalUnit, error) {
	if in.PropertyID == 0 {
		return nil, apperror.Validation(map[string][]string{"property_id": {"The property_id field is required."}})
	}
	created, err := s.create(ctx, user, in.PropertyID, []UnitInput{in}, func(int) string { return "" })
	if err != nil {
		return nil, err
	}
	return s.store.GetRentalUnit(ctx, created[0].ID)
}

func (s *RentalUnitService) create(ctx context.Context, user *model.User, propertyID uint, units []UnitInput, prefix func(int) string) ([]model.RentalUnit, error) {
	var created []model.RentalUnit

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.LockProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := checkAccess(user, p); err != nil {
			return err
		}

		existing, err := tx.CountRentalUnits(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(units) > p.RemainingUnits(existing) {
			return capacityError(p, existing, len(units))
		}

		errs := map[string][]string{}
		for i := range units {
			validateUnit(&units[i], prefix(i), errs)
			for j, a := range units[i].Assets {
				if _, err := tx.GetAsset(ctx, a.AssetID); err != nil {
					if !isNotFound(err) {
						return err
					}
					key := fmt.Sprintf("%sassets[%d].asset_id", prefix(i), j)
					errs[key] = append(errs[key], "The selected asset_id is invalid.")
				}
			}
		}
		if len(errs) > 0 {
			return apperror.Validation(errs)
		}

		if err := checkCollisions(ctx, tx, p.ID, units, 0); err != nil {
			return err
		}

		for _, in := range units {
			u := &model.RentalUnit{PropertyID: p.ID, IsActive: true}
			in.toModel(u)
			if err := tx.CreateRentalUnit(ctx, u); err != nil {
				return err
			}
			if err := s.place(ctx, tx, u.ID, in.Assets); err != nil {
				return err
			}
			created = append(created, *u)
		}

		_, err = SyncPropertyStatus(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *RentalUnitService) place(ctx context.Context, tx repository.Store, unitID uint, assets []UnitAssetInput) error {
	for _, a := range assets {
		ua := &model.RentalUnitAsset{
			RentalUnitID:     unitID,
			AssetID:          a.AssetID,
			Quantity:         a.Quantity,
			SerialNumbers:    a.SerialNumbers,
			AssetLocation:    a.AssetLocation,
			InstallationDate: parseDate(a.InstallationDate),
			Status:           model.AssetStatus(canonical(refdata.AssetStatus, a.Status)),
			Notes:            a.Notes,
			IsActive:         true,
		}
		if ua.Quantity == 0 {
			ua.Quantity = 1
		}
		if ua.Status == "" {
			ua.Status = model.AssetStatusWorking
		}
		if ua.InstallationDate == nil {
			today := s.now().Truncate(24 * time.Hour)
			ua.InstallationDate = &today
		}
		if err := tx.CreateUnitAsset(ctx, ua); err != nil {
			return err
		}
	}
	return nil
}

// Update replaces the unit's attributes. The property cannot change.
func (s *RentalUnitService) Update(ctx context.Context, user *model.User, id uint, in UnitInput) (*model.RentalUnit, error) {
	u, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	errs := map[string][]string{}
	in.Assets = nil
	validateUnit(&in, "", errs)
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := checkCollisions(ctx, tx, u.PropertyID, []UnitInput{in}, u.ID); err != nil {
			return err
		}
		in.toModel(u)
		if err := tx.SaveRentalUnit(ctx, u); err != nil {
			return err
		}
		_, err := SyncPropertyStatus(ctx, tx, u.PropertyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetRentalUnit(ctx, id)
}

// UpdateStatus keeps the tenant in step with the status: leaving occupied
// clears the tenant, entering it requires one.
func (s *RentalUnitService) UpdateStatus(ctx context.Context, user *model.User, id uint, in UnitStatusInput) (*model.RentalUnit, error) {
	if errs := validation.Struct(in); errs != nil {
		return nil, apperror.Validation(errs)
	}
	u, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	u.Status = model.RentalUnitStatus(canonical(refdata.UnitStatus, in.Status))
	if u.Status == model.UnitStatusOccupied {
		if in.TenantID == nil && u.TenantID == nil {
			return nil, apperror.Validation(map[string][]string{
				"tenant_id": {"The tenant_id field is required when status is occupied."},
			})
		}
		if in.TenantID != nil {
			u.TenantID = in.TenantID
		}
	} else {
		u.TenantID = nil
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.SaveRentalUnit(ctx, u); err != nil {
			return err
		}
		_, err := SyncPropertyStatus(ctx, tx, u.PropertyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetRentalUnit(ctx, id)
}

func (s *RentalUnitService) Delete(ctx context.Context, user *model.User, id uint) error {
	u, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.DeleteRentalUnit(ctx, u.ID); err != nil {
			return err
		}
		_, err := SyncPropertyStatus(ctx, tx, u.PropertyID)
		return err
	})
}

func (s *RentalUnitService) ListAssets(ctx context.Context, user *model.User, unitID uint) ([]model.RentalUnitAsset, error) {
	if _, err := s.Get(ctx, user, unitID); err != nil {
		return nil, err
	}
	return s.store.ListUnitAssets(ctx, unitID, true)
}

// AddAssets places one or more assets in the unit. The same asset may be
// placed more than once.
func (s *RentalUnitService) AddAssets(ctx context.Context, user *model.User, unitID uint, assets []UnitAssetInput) ([]model.RentalUnitAsset, error) {
	if _, err := s.Get(ctx, user, unitID); err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, apperror.Validation(map[string][]string{"assets": {"The assets field must have at least 1 items."}})
	}

	errs := map[string][]string{}
	for i := range assets {
		for k, v := range validation.Struct(assets[i]) {
			key := fmt.Sprintf("assets[%d].%s", i, k)
			errs[key] = append(errs[key], v...)
		}
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for i, a := range assets {
			if _, err := tx.GetAsset(ctx, a.AssetID); err != nil {
				if isNotFound(err) {
					return apperror.Validation(map[string][]string{
						fmt.Sprintf("assets[%d].asset_id", i): {"The selected asset_id is invalid."},
					})
				}
				return err
			}
		}
		return s.place(ctx, tx, unitID, assets)
	})
	if err != nil {
		return nil, err
	}
	return s.store.ListUnitAssets(ctx, unitID, true)
}

// activePlacement loads a placement that is still active in unitID.
func (s *RentalUnitService) activePlacement(ctx context.Context, user *model.User, unitID, placementID uint) (*model.RentalUnitAsset, error) {
	if _, err := s.Get(ctx, user, unitID); err != nil {
		return nil, err
	}
	ua, err := s.store.GetUnitAsset(ctx, placementID)
	if err != nil {
		return nil, err
	}
	if ua.RentalUnitID != unitID || !ua.IsActive {
		return nil, apperror.NotFound("Asset not found in this rental unit")
	}
	return ua, nil
}

// RemoveAsset deactivates a placement; the row is kept for history.
func (s *RentalUnitService) RemoveAsset(ctx context.Context, user *model.User, unitID, placementID uint) error {
	ua, err := s.activePlacement(ctx, user, unitID, placementID)
	if err != nil {
		return err
	}
	ua.IsActive = false
	return s.store.SaveUnitAsset(ctx, ua)
}

// PlacementUpdateInput changes the condition of a placed asset. Nil fields
// are left as they are.
type PlacementUpdateInput struct {
	Status           string  `json:"status" validate:"required,enum=asset_status"`
	Quantity         *int    `json:"quantity" validate:"omitempty,min=1"`
	SerialNumbers    *string `json:"serial_numbers"`
	AssetLocation    *string `json:"asset_location" validate:"omitempty,max=255"`
	InstallationDate *string `json:"installation_date" validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateAssetPlacement records a status change (and optionally quantity,
// location or notes) of an asset placed in the unit.
func (s *RentalUnitService) UpdateAssetPlacement(ctx context.Context, user *model.User, unitID, placementID uint, in PlacementUpdateInput) (*model.RentalUnitAsset, error) {
	if errs := validation.Struct(in); errs != nil {
		return nil, apperror.Validation(errs)
	}
	ua, err := s.activePlacement(ctx, user, unitID, placementID)
	if err != nil {
		return nil, err
	}

	ua.Status = model.AssetStatus(canonical(refdata.AssetStatus, in.Status))
	if in.Quantity != nil {
		ua.Quantity = *in.Quantity
	}
	if in.SerialNumbers != nil {
		ua.SerialNumbers = strings.TrimSpace(*in.SerialNumbers)
	}
	if in.AssetLocation != nil {
		ua.AssetLocation = strings.TrimSpace(*in.AssetLocation)
	}
	if in.InstallationDate != nil {
		ua.InstallationDate = parseDate(in.InstallationDate)
	}
	if in.Notes != nil {
		ua.Notes = *in.Notes
	}
	if err := s.store.SaveUnitAsset(ctx, ua); err != nil {
		return nil, err
	}
	return s.store.GetUnitAsset(ctx, ua.ID)
}

// BulkAssignRequest places the same assets in several units.
type BulkAssignRequest struct {
	RentalUnitIDs []uint           `json:"rental_unit_ids" validate:"required,min=1,dive,required"`
	Assets        []UnitAssetInput `json:"assets" validate:"required,min=1,dive"`
}

type UnitAssignResult struct {
	RentalUnitID uint     `json:"rental_unit_id"`
	Success      int      `json:"success"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors"`
}

type BulkAssignResult struct {
	Success     int                `json:"success"`
	Failed      int                `json:"failed"`
	TotalUnits  int                `json:"total_units"`
	TotalAssets int                `json:"total_assets"`
	UnitResults []UnitAssignResult `json:"unit_results"`
}

// BulkAssignAssets places every asset in every listed unit in one
// transaction. An asset already active in a unit has that placement updated
// instead of a second one created. Units that are missing or outside the
// caller's properties are reported and skipped.
func (s *RentalUnitService) BulkAssignAssets(ctx context.Context, user *model.User, req BulkAssignRequest) (BulkAssignResult, error) {
	if errs := validation.Struct(req); errs != nil {
		return BulkAssignResult{}, apperror.Validation(errs)
	}

	res := BulkAssignResult{
		TotalUnits:  len(req.RentalUnitIDs),
		TotalAssets: len(req.Assets),
		UnitResults: []UnitAssignResult{},
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		errs := map[string][]string{}
		for i, a := range req.Assets {
			if _, err := tx.GetAsset(ctx, a.AssetID); err != nil {
				if !isNotFound(err) {
					return err
				}
				key := fmt.Sprintf("assets[%d].asset_id", i)
				errs[key] = append(errs[key], "The selected asset_id is invalid.")
			}
		}
		if len(errs) > 0 {
			return apperror.Validation(errs)
		}

		for _, unitID := range req.RentalUnitIDs {
			ur := UnitAssignResult{RentalUnitID: unitID, Errors: []string{}}
			reason, err := s.assignable(ctx, tx, user, unitID)
			if err != nil {
				return err
			}
			if reason != "" {
				ur.Failed = len(req.Assets)
				ur.Errors = append(ur.Errors, reason)
			} else {
				for _, a := range req.Assets {
					if err := s.assign(ctx, tx, unitID, a); err != nil {
						return err
					}
					ur.Success++
				}
			}

			if ur.Success > 0 {
				res.Success++
			} else {
				res.Failed++
			}
			res.UnitResults = append(res.UnitResults, ur)
		}
		return nil
	})
	if err != nil {
		return BulkAssignResult{}, err
	}
	return res, nil
}

// assignable returns why unitID cannot receive assets, or "".
func (s *RentalUnitService) assignable(ctx context.Context, tx repository.Store, user *model.User, unitID uint) (string, error) {
	u, err := tx.GetRentalUnit(ctx, unitID)
	if err != nil {
		if isNotFound(err) {
			return "Rental unit not found", nil
		}
		return "", err
	}
	p, err := tx.GetProperty(ctx, u.PropertyID)
	if err != nil {
		return "", err
	}
	if !user.CanManage(p) {
		return "Access denied", nil
	}
	return "", nil
}

// assign updates the unit's active placement of the asset or creates one.
func (s *RentalUnitService) assign(ctx context.Context, tx repository.Store, unitID uint, a UnitAssetInput) error {
	placed, err := tx.ListUnitAssets(ctx, unitID, true)
	if err != nil {
		return err
	}
	for i := range placed {
		ua := placed[i]
		if ua.AssetID != a.AssetID {
			continue
		}
		ua.Quantity = a.Quantity
		if ua.Quantity == 0 {
			ua.Quantity = 1
		}
		ua.Status = model.AssetStatus(canonical(refdata.AssetStatus, a.Status))
		if ua.Status == "" {
			ua.Status = model.AssetStatusWorking
		}
		if v := strings.TrimSpace(a.SerialNumbers); v != "" {
			ua.SerialNumbers = v
		}
		if v := strings.TrimSpace(a.AssetLocation); v != "" {
			ua.AssetLocation = v
		}
		if d := parseDate(a.InstallationDate); d != nil {
			ua.InstallationDate = d
		}
		ua.Notes = "Updated via bulk assignment"
		if a.Notes != "" {
			ua.Notes = a.Notes
		}
		ua.Asset = nil
		return tx.SaveUnitAsset(ctx, &ua)
	}

	if a.Notes == "" {
		a.Notes = "Assigned via bulk assignment"
	}
	return s.place(ctx, tx, unitID, []UnitAssetInput{a})
}

func (s *RentalUnitService) Template() importer.Template {
	return s.validator.Template(importer.EntityRentalUnit)
}

func (s *RentalUnitService) Preview(ctx context.Context, user *model.User, req UnitImportRequest) (importer.PreviewResult, error) {
	if req.PropertyID == 0 {
		return importer.PreviewResult{}, apperror.Validation(map[string][]string{"property_id": {"The property_id field is required."}})
	}
	p, err := s.store.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return importer.PreviewResult{}, err
	}
	if err := checkAccess(user, p); err != nil {
		return importer.PreviewResult{}, err
	}

	records, err := req.Records(importer.EntityRentalUnit)
	if err != nil {
		return importer.PreviewResult{}, err
	}
	return importer.Preview(records, func(rec importer.Record) (interface{}, []string) {
		return s.validator.RentalUnit(rec)
	}), nil
}

// UnitImportResult is an import outcome plus the units it created.
type UnitImportResult struct {
	importer.Result
	Units []model.RentalUnit `json:"rental_units"`
}

// Import creates units from CSV rows. The quota is checked against the row
// count first; the rows then go through the shared committer, so a failing
// row aborts the file unless SkipErrors is set.
func (s *RentalUnitService) Import(ctx context.Context, user *model.User, req UnitImportRequest) (UnitImportResult, error) {
	if req.PropertyID == 0 {
		return UnitImportResult{}, apperror.Validation(map[string][]string{"property_id": {"The property_id field is required."}})
	}
	records, err := req.Records(importer.EntityRentalUnit)
	if err != nil {
		return UnitImportResult{}, err
	}
	if len(records) == 0 {
		return UnitImportResult{}, apperror.BadRequest("No data rows found in the CSV", nil)
	}

	p, err := s.store.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return UnitImportResult{}, err
	}
	if err := checkAccess(user, p); err != nil {
		return UnitImportResult{}, err
	}
	existing, err := s.store.CountRentalUnits(ctx, p.ID)
	if err != nil {
		return UnitImportResult{}, err
	}
	if len(records) > p.RemainingUnits(existing) {
		err := capacityError(p, existing, len(records))
		s.recordRejected(ctx, user, req, len(records), err.Error())
		return UnitImportResult{}, err
	}

	var created []model.RentalUnit
	res, err := importer.Commit(ctx, s.store, records, req.SkipErrors, func(ctx context.Context, tx repository.Store, rec importer.Record) error {
		u, err := s.importRow(ctx, tx, p.ID, rec)
		if err != nil {
			return err
		}
		created = append(created, *u)
		return nil
	})
	if err != nil {
		return UnitImportResult{}, err
	}

	upload := Upload{Data: []byte(req.CSVData), Ext: ".csv"}
	s.audit.Record(ctx, importer.EntityRentalUnit, user, upload, req.SkipErrors, res)
	if !res.Committed {
		return UnitImportResult{}, apperror.BadRequest("Import failed", map[string]interface{}{
			"imported": res.Imported,
			"failed":   res.Failed,
			"errors":   res.Errors,
		})
	}

	if res.Imported > 0 {
		if _, err := SyncPropertyStatus(ctx, s.store, p.ID); err != nil {
			return UnitImportResult{}, err
		}
	}
	if created == nil {
		created = []model.RentalUnit{}
	}
	return UnitImportResult{Result: res, Units: created}, nil
}

// importRow validates and creates one CSV unit under the property lock.
func (s *RentalUnitService) importRow(ctx context.Context, tx repository.Store, propertyID uint, rec importer.Record) (*model.RentalUnit, error) {
	draft, problems := s.validator.RentalUnit(rec)
	if len(problems) > 0 {
		return nil, importer.RowFailed(rec, "%s", problems[0])
	}

	p, err := tx.LockProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	existing, err := tx.CountRentalUnits(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.RemainingUnits(existing) <= 0 {
		return nil, importer.RowFailed(rec, "Property '%s' has reached its maximum of %d rental unit(s)", p.Name, p.NumberOfRentalUnits)
	}

	in := draftToInput(draft, p.ID)
	errs := map[string][]string{}
	validateUnit(&in, "", errs)
	if msg := firstMessage(errs); msg != "" {
		return nil, importer.RowFailed(rec, "%s", msg)
	}
	if err := checkCollisions(ctx, tx, p.ID, []UnitInput{in}, 0); err != nil {
		appErr, ok := apperror.As(err)
		if !ok {
			return nil, err
		}
		if nested, ok := appErr.Details["errors"].(map[string][]string); ok {
			if msg := firstMessage(nested); msg != "" {
				return nil, importer.RowFailed(rec, "%s", msg)
			}
		}
		return nil, importer.RowFailed(rec, "%s", appErr.Message)
	}

	u := &model.RentalUnit{PropertyID: p.ID, IsActive: true}
	in.toModel(u)
	if err := tx.CreateRentalUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// firstMessage returns the first message of the alphabetically first key.
func firstMessage(errs map[string][]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(errs[k]) > 0 {
			return errs[k][0]
		}
	}
	return ""
}

// recordRejected audits a file refused before any row was tried.
func (s *RentalUnitService) recordRejected(ctx context.Context, user *model.User, req UnitImportRequest, total int, reason string) {
	s.audit.Record(ctx, importer.EntityRentalUnit, user, Upload{Data: []byte(req.CSVData), Ext: ".csv"}, req.SkipErrors, importer.Result{
		Failed: total,
		Errors: []string{reason},
		Total:  total,
	})
}

func draftToInput(d importer.UnitDraft, propertyID uint) UnitInput {
	rent, deposit := d.RentAmount, d.DepositAmount
	return UnitInput{
		PropertyID:                propertyID,
		UnitNumber:                d.UnitNumber,
		UnitType:                  string(d.UnitType),
		FloorNumber:               d.FloorNumber,
		NumberOfRooms:             d.NumberOfRooms,
		NumberOfToilets:           d.NumberOfToilets,
		SquareFeet:                d.SquareFeet,
		RentAmount:                &rent,
		DepositAmount:             &deposit,
		Currency:                  d.Currency,
		WaterMeterNumber:          d.WaterMeterNumber,
		WaterBillingAccount:       d.WaterBillingAccount,
		ElectricityMeterNumber:    d.ElectricityMeterNumber,
		ElectricityBillingAccount: d.ElectricityBillingAccount,
		AccessCardNumbers:         d.AccessCardNumbers,
		Status:                    string(d.Status),
		Notes:                     d.Notes,
	}
}
