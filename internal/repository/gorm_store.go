package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/pkg/utils/apperror"
)

// GormStore is the postgres backed Store.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&GormStore{db: tx, inTx: true}); err != nil {
		tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit().Error, "commit transaction")
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(what + " not found")
	}
	return errors.Wrapf(err, "get %s", what)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	return errors.Wrap(s.conn(ctx).Create(u).Error, "create user")
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.conn(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.conn(ctx).Order("id ASC").Find(&users).Error
	return users, errors.Wrap(err, "list users")
}

func (s *GormStore) ListRentalUnitTypes(ctx context.Context, filter TypeFilter) ([]model.RentalUnitType, error) {
	q := s.conn(ctx).Model(&model.RentalUnitType{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var types []model.RentalUnitType
	err := q.Order("name ASC").Find(&types).Error
	return types, errors.Wrap(err, "list rental unit types")
}

func (s *GormStore) GetRentalUnitType(ctx context.Context, id uint) (*model.RentalUnitType, error) {
	var t model.RentalUnitType
	if err := s.conn(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err, "Rental unit type")
	}
	return &t, nil
}

func (s *GormStore) SaveRentalUnitType(ctx context.Context, t *model.RentalUnitType) error {
	// Select("*") so that is_active=false is written instead of the column default
	return errors.Wrap(s.conn(ctx).Select("*").Save(t).Error, "save rental unit type")
}

func (s *GormStore) CreateImportBatch(ctx context.Context, b *model.ImportBatch) error {
	return errors.Wrap(s.conn(ctx).Create(b).Error, "create import batch")
}

func (s *GormStore) ListImportBatches(ctx context.Context, userID *uint, limit int) ([]model.ImportBatch, error) {
	q := s.conn(ctx).Order("id DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var batches []model.ImportBatch
	err := q.Find(&batches).Error
	return batches, errors.Wrap(err, "list import batches")
}
