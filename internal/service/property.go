package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/export"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/cloudflare"
	"rentdesk_backend/pkg/utils/image"
	"rentdesk_backend/pkg/utils/validation"
)

type PropertyInput struct {
	Name                string `json:"name" validate:"required,max=255"`
	Type                string `json:"type" validate:"required,max=100"`
	Street              string `json:"street" validate:"required,max=255"`
	City                string `json:"city" validate:"required,max=255"`
	Island              string `json:"island" validate:"required,max=255"`
	PostalCode          string `json:"postal_code" validate:"max=20"`
	Country             string `json:"country" validate:"max=100"`
	Description         string `json:"description"`
	Status              string `json:"status" validate:"omitempty,enum=property_status"`
	NumberOfFloors      int    `json:"number_of_floors" validate:"required,min=1"`
	NumberOfRentalUnits int    `json:"number_of_rental_units" validate:"required,min=1"`
	Bedrooms            int    `json:"bedrooms" validate:"required,min=1"`
	Bathrooms           int    `json:"bathrooms" validate:"required,min=1"`
	SquareFeet          *int   `json:"square_feet" validate:"omitempty,min=0"`
	YearBuilt           *int   `json:"year_built" validate:"omitempty,min=1800"`
	AssignedManagerID   *uint  `json:"assigned_manager_id"`
}

// Capacity is the unit, room and toilet budget of a property.
type Capacity struct {
	Property struct {
		ID        uint   `json:"id"`
		Name      string `json:"name"`
		Bedrooms  int    `json:"bedrooms"`
		Bathrooms int    `json:"bathrooms"`
		MaxUnits  int    `json:"maxUnits"`
	} `json:"property"`
	Current struct {
		TotalUnits   int `json:"totalUnits"`
		TotalRooms   int `json:"totalRooms"`
		TotalToilets int `json:"totalToilets"`
	} `json:"current"`
	Remaining struct {
		Units   int `json:"units"`
		Rooms   int `json:"rooms"`
		Toilets int `json:"toilets"`
	} `json:"remaining"`
	CanAddMore struct {
		Units   bool `json:"units"`
		Rooms   bool `json:"rooms"`
		Toilets bool `json:"toilets"`
	} `json:"canAddMore"`
}

type PropertyService struct {
	store     repository.Store
	ref       *refdata.Service
	validator *importer.Validator
	audit     *ImportAudit
	photos    ObjectStorage
	now       func() time.Time
}

// NewPropertyService photos may be nil when object storage is not configured.
func NewPropertyService(store repository.Store, ref *refdata.Service, audit *ImportAudit, photos ObjectStorage) *PropertyService {
	return &PropertyService{
		store:     store,
		ref:       ref,
		validator: importer.NewValidator(ref),
		audit:     audit,
		photos:    photos,
		now:       time.Now,
	}
}

func (s *PropertyService) List(ctx context.Context, user *model.User, filter repository.PropertyFilter) ([]model.Property, int64, error) {
	filter.ManagerID = managerScope(user)
	return s.store.ListProperties(ctx, filter)
}

func (s *PropertyService) Get(ctx context.Context, user *model.User, id uint) (*model.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(user, p); err != nil {
		return nil, err
	}
	return p, nil
}

// validateInput runs struct validation and the checks that need reference
// data. Returned errors are keyed with prefix.
func (s *PropertyService) validateInput(ctx context.Context, in *PropertyInput, prefix string, errs map[string][]string) error {
	for k, v := range validation.Struct(in) {
		errs[prefix+k] = append(errs[prefix+k], v...)
	}

	if in.Type != "" {
		types, err := s.ref.PropertyTypes(ctx)
		if err != nil {
			return err
		}
		if canonical, ok := refdata.Match(types, in.Type); ok {
			in.Type = canonical
		} else {
			errs[prefix+"type"] = append(errs[prefix+"type"], refdata.InvalidMessage("type", in.Type, types))
		}
	}
	if in.YearBuilt != nil && *in.YearBuilt > s.now().Year() {
		errs[prefix+"year_built"] = append(errs[prefix+"year_built"],
			fmt.Sprintf("The year_built field must not be greater than %d.", s.now().Year()))
	}
	return nil
}

func (s *PropertyService) checkUnique(ctx context.Context, store repository.Store, in PropertyInput, excludeID uint, prefix string, errs map[string][]string) error {
	taken, err := store.PropertyNameTaken(ctx, in.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		errs[prefix+"name"] = append(errs[prefix+"name"], "A property with this name already exists.")
	}

	taken, err = store.PropertyAddressTaken(ctx, in.Street, in.Island, excludeID)
	if err != nil {
		return err
	}
	if taken {
		errs[prefix+"address"] = append(errs[prefix+"address"], "A property with this address (street and island combination) already exists.")
	}
	return nil
}

func (s *PropertyService) apply(user *model.User, p *model.Property, in PropertyInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Type = in.Type
	p.Street = strings.TrimSpace(in.Street)
	p.City = strings.TrimSpace(in.City)
	p.Island = strings.TrimSpace(in.Island)
	p.PostalCode = in.PostalCode
	p.Country = in.Country
	if p.Country == "" {
		p.Country = model.DefaultCountry
	}
	p.Description = in.Description
	if in.Status != "" {
		p.Status = model.PropertyStatus(canonical(refdata.PropertyStatus, in.Status))
	} else if p.Status == "" {
		p.Status = model.PropertyStatusVacant
	}
	p.NumberOfFloors = in.NumberOfFloors
	p.NumberOfRentalUnits = in.NumberOfRentalUnits
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.SquareFeet = in.SquareFeet
	p.YearBuilt = in.YearBuilt

	// yöneticiler yalnızca kendilerine atayabilir
	switch {
	case user.IsAdmin() && in.AssignedManagerID != nil:
		p.AssignedManagerID = in.AssignedManagerID
	case p.AssignedManagerID == nil:
		id := user.ID
		p.AssignedManagerID = &id
	}
}

// Create yeni mülk oluşturur
func (s *PropertyService) Create(ctx context.Context, user *model.User, in PropertyInput) (*model.Property, error) {
	errs := map[string][]string{}
	if err := s.validateInput(ctx, &in, "", errs); err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		if err := s.checkUnique(ctx, s.store, in, 0, "", errs); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	p := &model.Property{IsActive: true}
	s.apply(user, p, in)
	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProperty(ctx, p.ID)
}

// BulkCreate creates all properties or none. Names are checked against the
// existing rows and against each other before anything is written.
func (s *PropertyService) BulkCreate(ctx context.Context, user *model.User, inputs []PropertyInput) ([]model.Property, error) {
	if len(inputs) == 0 {
		return nil, apperror.Validation(map[string][]string{"properties": {"The properties field must have at least 1 items."}})
	}

	errs := map[string][]string{}
	for i := range inputs {
		if err := s.validateInput(ctx, &inputs[i], fmt.Sprintf("properties[%d].", i), errs); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	seen := map[string]bool{}
	var duplicates []string
	for _, in := range inputs {
		key := model.NormalizeName(in.Name)
		taken, err := s.store.PropertyNameTaken(ctx, in.Name, 0)
		if err != nil {
			return nil, err
		}
		if seen[key] || taken {
			duplicates = append(duplicates, strings.TrimSpace(in.Name))
		}
		seen[key] = true
	}
	if len(duplicates) > 0 {
		return nil, apperror.BadRequest("Duplicate property names found", map[string]interface{}{
			"duplicate_names": duplicates,
		})
	}

	created := make([]model.Property, 0, len(inputs))
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for i, in := range inputs {
			rowErrs := map[string][]string{}
			if err := s.checkUnique(ctx, tx, in, 0, fmt.Sprintf("properties[%d].", i), rowErrs); err != nil {
				return err
			}
			if len(rowErrs) > 0 {
				return apperror.Validation(rowErrs)
			}

			p := &model.Property{IsActive: true}
			s.apply(user, p, in)
			if err := tx.CreateProperty(ctx, p); err != nil {
				return err
			}
			created = append(created, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PropertyService) Update(ctx context.Context, user *model.User, id uint, in PropertyInput) (*model.Property, error) {
	p, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	errs := map[string][]string{}
	if err := s.validateInput(ctx, &in, "", errs); err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		if err := s.checkUnique(ctx, s.store, in, p.ID, "", errs); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	// the unit quota may not drop below the units already created
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.LockProperty(ctx, p.ID)
		if err != nil {
			return err
		}
		count, err := tx.CountRentalUnits(ctx, locked.ID)
		if err != nil {
			return err
		}
		if int64(in.NumberOfRentalUnits) < count {
			return apperror.Validation(map[string][]string{
				"number_of_rental_units": {fmt.Sprintf("The number_of_rental_units field must be at least %d, the number of existing rental units.", count)},
			})
		}
		s.apply(user, locked, in)
		return tx.SaveProperty(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetProperty(ctx, p.ID)
}

// Delete refuses while the property still has rental units.
func (s *PropertyService) Delete(ctx context.Context, user *model.User, id uint) error {
	p, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	count, err := s.store.CountRentalUnits(ctx, p.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.BadRequest("Cannot delete property with rental units. Please delete all rental units first.",
			map[string]interface{}{"rental_units_count": count})
	}
	return s.store.DeleteProperty(ctx, p.ID)
}

// Capacity counts active units only.
func (s *PropertyService) Capacity(ctx context.Context, user *model.User, id uint) (*Capacity, error) {
	p, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	units, err := s.store.ListRentalUnits(ctx, repository.UnitFilter{PropertyID: &p.ID})
	if err != nil {
		return nil, err
	}

	c := &Capacity{}
	c.Property.ID = p.ID
	c.Property.Name = p.Name
	c.Property.Bedrooms = p.Bedrooms
	c.Property.Bathrooms = p.Bathrooms
	c.Property.MaxUnits = p.NumberOfRentalUnits
	for _, u := range units {
		if !u.IsActive {
			continue
		}
		c.Current.TotalUnits++
		c.Current.TotalRooms += u.NumberOfRooms
		c.Current.TotalToilets += u.NumberOfToilets
	}
	c.Remaining.Units = p.NumberOfRentalUnits - c.Current.TotalUnits
	c.Remaining.Rooms = p.Bedrooms - c.Current.TotalRooms
	c.Remaining.Toilets = p.Bathrooms - c.Current.TotalToilets
	c.CanAddMore.Units = c.Current.TotalUnits < p.NumberOfRentalUnits
	c.CanAddMore.Rooms = c.Current.TotalRooms < p.Bedrooms
	c.CanAddMore.Toilets = c.Current.TotalToilets < p.Bathrooms
	return c, nil
}

// AddPhoto converts the upload to webp and stores it. The first photo
// becomes the cover.
func (s *PropertyService) AddPhoto(ctx context.Context, user *model.User, id uint, file *multipart.FileHeader) (*model.PropertyPhoto, error) {
	if s.photos == nil {
		return nil, apperror.BadRequest("Photo storage is not configured", nil)
	}
	p, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateImage(file); err != nil {
		return nil, apperror.BadRequest(err.Error(), nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	buf, contentType, err := image.ToWebP(src)
	if err != nil {
		return nil, apperror.BadRequest("Could not process image", map[string]interface{}{"error": err.Error()})
	}

	url, err := s.photos.Upload(ctx, cloudflare.PropertyPhotoKey(p.Name, ".webp"), buf, contentType)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountPropertyPhotos(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	photo := &model.PropertyPhoto{PropertyID: p.ID, URL: url, IsCover: count == 0, Order: int(count)}
	if err := s.store.AddPropertyPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Template returns the property CSV template.
func (s *PropertyService) Template() importer.Template {
	return s.validator.Template(importer.EntityProperty)
}

func (s *PropertyService) Preview(ctx context.Context, req importer.Request) (importer.PreviewResult, error) {
	records, err := req.Records(importer.EntityProperty)
	if err != nil {
		return importer.PreviewResult{}, err
	}
	types, err := s.ref.PropertyTypes(ctx)
	if err != nil {
		return importer.PreviewResult{}, err
	}
	return importer.Preview(records, func(rec importer.Record) (interface{}, []string) {
		return s.validator.Property(rec, types)
	}), nil
}

// Import creates one property per row. Name and address are checked inside
// the transaction, so earlier rows of the batch count as existing.
func (s *PropertyService) Import(ctx context.Context, user *model.User, req importer.Request) (importer.Result, error) {
	records, err := req.Records(importer.EntityProperty)
	if err != nil {
		return importer.Result{}, err
	}
	types, err := s.ref.PropertyTypes(ctx)
	if err != nil {
		return importer.Result{}, err
	}

	managerID := user.ID
	res, err := importer.Commit(ctx, s.store, records, req.SkipErrors, func(ctx context.Context, tx repository.Store, rec importer.Record) error {
		draft, problems := s.validator.Property(rec, types)
		if len(problems) > 0 {
			return importer.RowFailed(rec, "%s", problems[0])
		}

		taken, err := tx.PropertyNameTaken(ctx, draft.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return importer.RowFailed(rec, "Property with name '%s' already exists", draft.Name)
		}
		taken, err = tx.PropertyAddressTaken(ctx, draft.Street, draft.Island, 0)
		if err != nil {
			return err
		}
		if taken {
			return importer.RowFailed(rec, "Property with address '%s, %s' already exists", draft.Street, draft.Island)
		}

		return tx.CreateProperty(ctx, draft.ToModel(&managerID))
	})
	if err != nil {
		return res, err
	}

	s.audit.Record(ctx, importer.EntityProperty, user, Upload{Data: []byte(req.CSVData), Ext: ".csv"}, req.SkipErrors, res)
	return res, nil
}

var propertyExportHeaders = []string{
	"id", "name", "type", "street", "city", "island", "postal_code", "country", "status",
	"number_of_floors", "number_of_rental_units", "rental_units_count", "bedrooms", "bathrooms",
	"square_feet", "year_built", "assigned_manager",
}

// Export writes every property visible to user.
func (s *PropertyService) Export(ctx context.Context, user *model.User, format export.Format, w io.Writer) error {
	var all []model.Property
	for page := 1; ; page++ {
		batch, total, err := s.store.ListProperties(ctx, repository.PropertyFilter{
			ManagerID: managerScope(user),
			Page:      page,
			PerPage:   100,
		})
		if err != nil {
			return err
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			break
		}
	}

	rows := make([][]string, 0, len(all))
	for _, p := range all {
		manager := ""
		if p.AssignedManager != nil {
			manager = p.AssignedManager.Email
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.ID), 10), p.Name, p.Type, p.Street, p.City, p.Island, p.PostalCode,
			p.Country, string(p.Status), strconv.Itoa(p.NumberOfFloors), strconv.Itoa(p.NumberOfRentalUnits),
			strconv.FormatInt(p.RentalUnitsCount, 10), strconv.Itoa(p.Bedrooms), strconv.Itoa(p.Bathrooms),
			optionalInt(p.SquareFeet), optionalInt(p.YearBuilt), manager,
		})
	}
	return export.Write(w, format, export.Table{Sheet: "Properties", Headers: propertyExportHeaders, Rows: rows})
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// ExportFilename properties-20060102.csv
func ExportFilename(entity string, format export.Format, at time.Time) string {
	return entity + "-" + at.Format("20060102") + format.Ext()
}

func fileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
