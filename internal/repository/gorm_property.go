package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentdesk_backend/internal/model"
)

func (s *GormStore) CreateProperty(ctx context.Context, p *model.Property) error {
	return errors.Wrap(s.conn(ctx).Omit(clause.Associations).Create(p).Error, "create property")
}

func (s *GormStore) SaveProperty(ctx context.Context, p *model.Property) error {
	return errors.Wrap(s.conn(ctx).Omit(clause.Associations).Select("*").Save(p).Error, "save property")
}

func (s *GormStore) GetProperty(ctx context.Context, id uint) (*model.Property, error) {
	var p model.Property
	err := s.conn(ctx).
		Preload("AssignedManager").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" ASC`) }).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "Property")
	}

	count, err := s.CountRentalUnits(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.RentalUnitsCount = count
	return &p, nil
}

func (s *GormStore) LockProperty(ctx context.Context, id uint) (*model.Property, error) {
	var p model.Property
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "Property")
	}
	return &p, nil
}

func (s *GormStore) ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := "%" + search + "%"
			db = db.Where("name ILIKE ? OR street ILIKE ? OR island ILIKE ? OR city ILIKE ?", like, like, like, like)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.ManagerID != nil {
			db = db.Where("assigned_manager_id = ?", *filter.ManagerID)
		}
		return db
	}

	var total int64
	if err := s.conn(ctx).Model(&model.Property{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count properties")
	}

	var properties []model.Property
	err := s.conn(ctx).Scopes(filtered, paginate(filter.Page, filter.PerPage)).
		Preload("AssignedManager").
		Order("id DESC").
		Find(&properties).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list properties")
	}

	if len(properties) == 0 {
		return properties, total, nil
	}

	ids := make([]uint, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}

	var counts []struct {
		PropertyID uint
		Count      int64
	}
	err = s.conn(ctx).Model(&model.RentalUnit{}).
		Select("property_id, COUNT(*) AS count").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "count rental units per property")
	}

	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.PropertyID] = c.Count
	}
	for i := range properties {
		properties[i].RentalUnitsCount = byID[properties[i].ID]
	}

	return properties, total, nil
}

func (s *GormStore) DeleteProperty(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&model.Property{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete property")
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "Property")
	}
	return nil
}

func (s *GormStore) PropertyNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(&model.Property{}).Where("LOWER(TRIM(name)) = ?", model.NormalizeName(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, errors.Wrap(err, "check property name")
}

func (s *GormStore) PropertyAddressTaken(ctx context.Context, street, island string, excludeID uint) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(&model.Property{}).
		Where("LOWER(TRIM(street)) = ? AND LOWER(TRIM(island)) = ?", model.NormalizeName(street), model.NormalizeName(island))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, errors.Wrap(err, "check property address")
}

func (s *GormStore) AddPropertyPhoto(ctx context.Context, photo *model.PropertyPhoto) error {
	return errors.Wrap(s.conn(ctx).Create(photo).Error, "add property photo")
}

func (s *GormStore) CountPropertyPhotos(ctx context.Context, propertyID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&model.PropertyPhoto{}).Where("property_id = ?", propertyID).Count(&count).Error
	return count, errors.Wrap(err, "count property photos")
}

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

func paginate(page, perPage int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		switch {
		case perPage <= 0:
			perPage = defaultPerPage
		case perPage > maxPerPage:
			perPage = maxPerPage
		}
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}
