package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentdesk_backend/internal/model"
)

// CreateRentalUnit inserts the unit and then its access cards. Cards are not
// left to association saving, which would silently skip conflicting numbers.
func (s *GormStore) CreateRentalUnit(ctx context.Context, u *model.RentalUnit) error {
	return s.WithinTx(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)
		if err := db.Omit(clause.Associations).Create(u).Error; err != nil {
			return errors.Wrap(err, "create rental unit")
		}
		return createCards(db, u)
	})
}

func (s *GormStore) SaveRentalUnit(ctx context.Context, u *model.RentalUnit) error {
	return s.WithinTx(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)
		if err := db.Omit(clause.Associations).Select("*").Save(u).Error; err != nil {
			return errors.Wrap(err, "save rental unit")
		}
		if err := db.Where("rental_unit_id = ?", u.ID).Delete(&model.AccessCard{}).Error; err != nil {
			return errors.Wrap(err, "clear access cards")
		}
		return createCards(db, u)
	})
}

func createCards(db *gorm.DB, u *model.RentalUnit) error {
	if len(u.AccessCards) == 0 {
		u.SyncCardNumbers()
		return nil
	}
	for i := range u.AccessCards {
		u.AccessCards[i].ID = 0
		u.AccessCards[i].RentalUnitID = u.ID
	}
	if err := db.Create(&u.AccessCards).Error; err != nil {
		return errors.Wrap(err, "create access cards")
	}
	u.SyncCardNumbers()
	return nil
}

func (s *GormStore) GetRentalUnit(ctx context.Context, id uint) (*model.RentalUnit, error) {
	var u model.RentalUnit
	err := s.conn(ctx).
		Preload("Property").
		Preload("AccessCards").
		Preload("Assets", "is_active = ?", true).
		Preload("Assets.Asset").
		First(&u, id).Error
	if err != nil {
		return nil, notFound(err, "Rental unit")
	}
	u.SyncCardNumbers()
	return &u, nil
}

func (s *GormStore) ListRentalUnits(ctx context.Context, filter UnitFilter) ([]model.RentalUnit, error) {
	q := s.conn(ctx).Preload("Property").Preload("AccessCards")
	if filter.PropertyID != nil {
		q = q.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ManagerID != nil {
		managed := s.conn(ctx).Model(&model.Property{}).Select("id").Where("assigned_manager_id = ?", *filter.ManagerID)
		q = q.Where("property_id IN (?)", managed)
	}

	var units []model.RentalUnit
	if err := q.Order("property_id ASC, unit_number ASC").Find(&units).Error; err != nil {
		return nil, errors.Wrap(err, "list rental units")
	}
	for i := range units {
		units[i].SyncCardNumbers()
	}
	return units, nil
}

// DeleteRentalUnit soft deletes the unit, frees its card numbers and retires
// its asset placements.
func (s *GormStore) DeleteRentalUnit(ctx context.Context, id uint) error {
	return s.WithinTx(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)
		res := db.Delete(&model.RentalUnit{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete rental unit")
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "Rental unit")
		}
		if err := db.Where("rental_unit_id = ?", id).Delete(&model.AccessCard{}).Error; err != nil {
			return errors.Wrap(err, "delete access cards")
		}
		err := db.Where("rental_unit_id = ?", id).Delete(&model.RentalUnitAsset{}).Error
		return errors.Wrap(err, "delete unit assets")
	})
}

func (s *GormStore) CountRentalUnits(ctx context.Context, propertyID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&model.RentalUnit{}).Where("property_id = ?", propertyID).Count(&count).Error
	return count, errors.Wrap(err, "count rental units")
}

func (s *GormStore) ExistingUnitNumbers(ctx context.Context, propertyID uint, numbers []string, excludeID uint) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	q := s.conn(ctx).Model(&model.RentalUnit{}).
		Where("property_id = ? AND unit_number IN ?", propertyID, numbers)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var existing []string
	err := q.Order("unit_number ASC").Pluck("unit_number", &existing).Error
	return existing, errors.Wrap(err, "find existing unit numbers")
}

func (s *GormStore) TakenAccessCards(ctx context.Context, numbers []string, excludeUnitID uint) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	q := s.conn(ctx).Model(&model.AccessCard{}).Where("number IN ?", numbers)
	if excludeUnitID != 0 {
		q = q.Where("rental_unit_id <> ?", excludeUnitID)
	}

	var taken []string
	err := q.Order("number ASC").Pluck("number", &taken).Error
	return taken, errors.Wrap(err, "find taken access cards")
}
