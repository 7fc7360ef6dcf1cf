package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"rentdesk_backend/internal/model"
)

func (s *GormStore) CreateAsset(ctx context.Context, a *model.Asset) error {
	return errors.Wrap(s.conn(ctx).Create(a).Error, "create asset")
}

func (s *GormStore) SaveAsset(ctx context.Context, a *model.Asset) error {
	return errors.Wrap(s.conn(ctx).Select("*").Save(a).Error, "save asset")
}

func (s *GormStore) GetAsset(ctx context.Context, id uint) (*model.Asset, error) {
	var a model.Asset
	if err := s.conn(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, "Asset")
	}
	return &a, nil
}

func (s *GormStore) ListAssets(ctx context.Context, filter AssetFilter) ([]model.Asset, error) {
	q := s.conn(ctx).Model(&model.Asset{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR brand ILIKE ? OR serial_no ILIKE ?", like, like, like)
	}

	var assets []model.Asset
	err := q.Order("name ASC, id ASC").Find(&assets).Error
	return assets, errors.Wrap(err, "list assets")
}

func (s *GormStore) DeleteAsset(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&model.Asset{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete asset")
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "Asset")
	}
	return nil
}

func (s *GormStore) AssetExists(ctx context.Context, name string, serialNo *string, excludeID uint) (bool, error) {
	q := s.conn(ctx).Model(&model.Asset{}).Where("name = ?", name)
	if serialNo == nil {
		q = q.Where("serial_no IS NULL")
	} else {
		q = q.Where("serial_no = ?", *serialNo)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, errors.Wrap(err, "check asset")
}

func (s *GormStore) CreateUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error {
	return errors.Wrap(s.conn(ctx).Omit("Asset").Create(ua).Error, "create unit asset")
}

func (s *GormStore) GetUnitAsset(ctx context.Context, id uint) (*model.RentalUnitAsset, error) {
	var ua model.RentalUnitAsset
	if err := s.conn(ctx).Preload("Asset").First(&ua, id).Error; err != nil {
		return nil, notFound(err, "Unit asset")
	}
	return &ua, nil
}

func (s *GormStore) SaveUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error {
	return errors.Wrap(s.conn(ctx).Omit("Asset").Select("*").Save(ua).Error, "save unit asset")
}

func (s *GormStore) ListUnitAssets(ctx context.Context, unitID uint, activeOnly bool) ([]model.RentalUnitAsset, error) {
	q := s.conn(ctx).Preload("Asset").Where("rental_unit_id = ?", unitID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var placements []model.RentalUnitAsset
	err := q.Order("id ASC").Find(&placements).Error
	return placements, errors.Wrap(err, "list unit assets")
}
