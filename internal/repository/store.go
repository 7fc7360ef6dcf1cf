package repository

import (
	"context"

	"rentdesk_backend/internal/model"
)

type PropertyFilter struct {
	Search    string
	Status    string
	ManagerID *uint
	Page      int
	PerPage   int
}

type UnitFilter struct {
	PropertyID *uint
	Status     string
	ManagerID  *uint
}

type AssetFilter struct {
	Category string
	Status   string
	Search   string
}

type TypeFilter struct {
	Category   string
	ActiveOnly bool
}

// Store is the persistence boundary. Every method honours ctx; WithinTx runs
// fn against a transactional Store that is committed when fn returns nil and
// rolled back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	ListRentalUnitTypes(ctx context.Context, filter TypeFilter) ([]model.RentalUnitType, error)
	GetRentalUnitType(ctx context.Context, id uint) (*model.RentalUnitType, error)
	SaveRentalUnitType(ctx context.Context, t *model.RentalUnitType) error

	CreateProperty(ctx context.Context, p *model.Property) error
	SaveProperty(ctx context.Context, p *model.Property) error
	GetProperty(ctx context.Context, id uint) (*model.Property, error)
	// LockProperty loads the property with a row lock held until the
	// surrounding transaction ends.
	LockProperty(ctx context.Context, id uint) (*model.Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, int64, error)
	DeleteProperty(ctx context.Context, id uint) error
	PropertyNameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	PropertyAddressTaken(ctx context.Context, street, island string, excludeID uint) (bool, error)
	AddPropertyPhoto(ctx context.Context, photo *model.PropertyPhoto) error
	CountPropertyPhotos(ctx context.Context, propertyID uint) (int64, error)

	CreateRentalUnit(ctx context.Context, u *model.RentalUnit) error
	SaveRentalUnit(ctx context.Context, u *model.RentalUnit) error
	GetRentalUnit(ctx context.Context, id uint) (*model.RentalUnit, error)
	ListRentalUnits(ctx context.Context, filter UnitFilter) ([]model.RentalUnit, error)
	DeleteRentalUnit(ctx context.Context, id uint) error
	CountRentalUnits(ctx context.Context, propertyID uint) (int64, error)
	ExistingUnitNumbers(ctx context.Context, propertyID uint, numbers []string, excludeID uint) ([]string, error)
	TakenAccessCards(ctx context.Context, numbers []string, excludeUnitID uint) ([]string, error)

	CreateAsset(ctx context.Context, a *model.Asset) error
	SaveAsset(ctx context.Context, a *model.Asset) error
	GetAsset(ctx context.Context, id uint) (*model.Asset, error)
	ListAssets(ctx context.Context, filter AssetFilter) ([]model.Asset, error)
	DeleteAsset(ctx context.Context, id uint) error
	// AssetExists matches name exactly; a nil serialNo matches assets without one.
	AssetExists(ctx context.Context, name string, serialNo *string, excludeID uint) (bool, error)

	CreateUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error
	GetUnitAsset(ctx context.Context, id uint) (*model.RentalUnitAsset, error)
	SaveUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error
	ListUnitAssets(ctx context.Context, unitID uint, activeOnly bool) ([]model.RentalUnitAsset, error)

	CreateImportBatch(ctx context.Context, b *model.ImportBatch) error
	ListImportBatches(ctx context.Context, userID *uint, limit int) ([]model.ImportBatch, error)
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
