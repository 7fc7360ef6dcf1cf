package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/export"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/validation"
)

type AssetInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Brand       string  `json:"brand" validate:"max=255"`
	SerialNo    *string `json:"serial_no" validate:"omitempty,max=255"`
	Category    string  `json:"category" validate:"required,enum=category"`
	Status      string  `json:"status" validate:"omitempty,enum=asset_status"`
	Description string  `json:"description"`
}

type AssetStatusInput struct {
	Status string `json:"status" validate:"required,enum=asset_status"`
}

// AssetFileImport is an uploaded .csv or .xlsx with its form fields.
type AssetFileImport struct {
	File         *multipart.FileHeader
	FieldMapping importer.FieldMapping
	HasHeader    bool
	SkipErrors   bool
}

type AssetService struct {
	store     repository.Store
	validator *importer.Validator
	audit     *ImportAudit
}

func NewAssetService(store repository.Store, ref *refdata.Service, audit *ImportAudit) *AssetService {
	return &AssetService{store: store, validator: importer.NewValidator(ref), audit: audit}
}

func (s *AssetService) List(ctx context.Context, filter repository.AssetFilter) ([]model.Asset, error) {
	return s.store.ListAssets(ctx, filter)
}

func (s *AssetService) Get(ctx context.Context, id uint) (*model.Asset, error) {
	return s.store.GetAsset(ctx, id)
}

func normalizeSerial(serial *string) *string {
	if serial == nil {
		return nil
	}
	v := strings.TrimSpace(*serial)
	if v == "" {
		return nil
	}
	return &v
}

func (s *AssetService) check(ctx context.Context, in *AssetInput, excludeID uint) error {
	in.Name = strings.TrimSpace(in.Name)
	in.SerialNo = normalizeSerial(in.SerialNo)
	if errs := validation.Struct(in); errs != nil {
		return apperror.Validation(errs)
	}

	exists, err := s.store.AssetExists(ctx, in.Name, in.SerialNo, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Validation(map[string][]string{
			"serial_no": {"An asset with this name and serial number already exists."},
		})
	}
	return nil
}

func (in AssetInput) apply(a *model.Asset) {
	a.Name = in.Name
	a.Brand = in.Brand
	a.SerialNo = in.SerialNo
	a.Category = model.AssetCategory(canonical(refdata.AssetCategory, in.Category))
	a.Status = model.AssetStatus(canonical(refdata.AssetStatus, in.Status))
	if a.Status == "" {
		a.Status = model.AssetStatusWorking
	}
	a.Description = in.Description
}

func (s *AssetService) Create(ctx context.Context, in AssetInput) (*model.Asset, error) {
	if err := s.check(ctx, &in, 0); err != nil {
		return nil, err
	}
	a := &model.Asset{}
	in.apply(a)
	if err := s.store.CreateAsset(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssetService) Update(ctx context.Context, id uint, in AssetInput) (*model.Asset, error) {
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, &in, a.ID); err != nil {
		return nil, err
	}
	in.apply(a)
	if err := s.store.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssetService) UpdateStatus(ctx context.Context, id uint, in AssetStatusInput) (*model.Asset, error) {
	if errs := validation.Struct(in); errs != nil {
		return nil, apperror.Validation(errs)
	}
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = model.AssetStatus(canonical(refdata.AssetStatus, in.Status))
	if err := s.store.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssetService) Delete(ctx context.Context, id uint) error {
	return s.store.DeleteAsset(ctx, id)
}

func (s *AssetService) Template() importer.Template {
	return s.validator.Template(importer.EntityAsset)
}

func (s *AssetService) Preview(ctx context.Context, req importer.Request) (importer.PreviewResult, error) {
	records, err := req.Records(importer.EntityAsset)
	if err != nil {
		return importer.PreviewResult{}, err
	}
	return importer.Preview(records, func(rec importer.Record) (interface{}, []string) {
		return s.validator.Asset(rec)
	}), nil
}

func (s *AssetService) Import(ctx context.Context, user *model.User, req importer.Request) (importer.Result, error) {
	records, err := req.Records(importer.EntityAsset)
	if err != nil {
		return importer.Result{}, err
	}
	return s.commit(ctx, user, records, req.SkipErrors, Upload{Data: []byte(req.CSVData), Ext: ".csv"})
}

// ImportFile is Import for an uploaded spreadsheet.
func (s *AssetService) ImportFile(ctx context.Context, user *model.User, in AssetFileImport) (importer.Result, error) {
	if err := validation.ValidateImportFile(in.File); err != nil {
		return importer.Result{}, apperror.BadRequest(err.Error(), nil)
	}
	if len(in.FieldMapping) == 0 {
		return importer.Result{}, apperror.Validation(map[string][]string{"field_mapping": {"The field_mapping field is required."}})
	}
	if err := in.FieldMapping.Check(importer.EntityAsset); err != nil {
		return importer.Result{}, err
	}

	f, err := in.File.Open()
	if err != nil {
		return importer.Result{}, errors.Wrap(err, "open asset upload")
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return importer.Result{}, errors.Wrap(err, "read asset upload")
	}
	rows, err := importer.ParseFile(strings.NewReader(string(raw)), in.File.Filename, in.HasHeader)
	if err != nil {
		return importer.Result{}, apperror.BadRequest("Could not read the uploaded file", map[string]interface{}{"error": err.Error()})
	}

	return s.commit(ctx, user, in.FieldMapping.Records(rows), in.SkipErrors, Upload{Data: raw, Ext: fileExt(in.File.Filename)})
}

func (s *AssetService) commit(ctx context.Context, user *model.User, records []importer.Record, skipErrors bool, upload Upload) (importer.Result, error) {
	res, err := importer.Commit(ctx, s.store, records, skipErrors, func(ctx context.Context, tx repository.Store, rec importer.Record) error {
		draft, problems := s.validator.Asset(rec)
		if len(problems) > 0 {
			return importer.RowFailed(rec, "%s", problems[0])
		}

		exists, err := tx.AssetExists(ctx, draft.Name, draft.SerialNo, 0)
		if err != nil {
			return err
		}
		if exists {
			return importer.RowFailed(rec, "%s", duplicateAssetMessage(draft))
		}
		return tx.CreateAsset(ctx, draft.ToModel())
	})
	if err != nil {
		return res, err
	}

	s.audit.Record(ctx, importer.EntityAsset, user, upload, skipErrors, res)
	return res, nil
}

func duplicateAssetMessage(d importer.AssetDraft) string {
	if d.SerialNo == nil {
		return fmt.Sprintf("Asset with name '%s' without serial number already exists", d.Name)
	}
	return fmt.Sprintf("Asset with name '%s' with serial number '%s' already exists", d.Name, *d.SerialNo)
}

var assetExportHeaders = []string{"id", "name", "brand", "serial_no", "category", "status", "description"}

func (s *AssetService) Export(ctx context.Context, filter repository.AssetFilter, format export.Format, w io.Writer) error {
	assets, err := s.store.ListAssets(ctx, filter)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		serial := ""
		if a.SerialNo != nil {
			serial = *a.SerialNo
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(a.ID), 10), a.Name, a.Brand, serial,
			string(a.Category), string(a.Status), a.Description,
		})
	}
	return export.Write(w, format, export.Table{Sheet: "Assets", Headers: assetExportHeaders, Rows: rows})
}
