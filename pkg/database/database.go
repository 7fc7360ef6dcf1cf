package database

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/logger"
)

var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	// PostgreSQL spesifik konfigürasyon
	pgConfig := postgres.Config{
		DSN:                  cfg.URL,
		PreferSimpleProtocol: true, // Prepared statement sorununu çözmek için
	}

	gormConfig := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Error),
		PrepareStmt: false,
	}

	db, err := gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	DB = db
	logger.Get().Info("Database connected successfully")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}

// Models is every table owned by the API, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.RentalUnitType{},
		&model.Property{},
		&model.PropertyPhoto{},
		&model.RentalUnit{},
		&model.AccessCard{},
		&model.Asset{},
		&model.RentalUnitAsset{},
		&model.ImportBatch{},
	}
}

func MigrateDatabase(db *gorm.DB, models ...interface{}) error {
	log := logger.Get()
	for _, m := range models {
		if !db.Migrator().HasTable(m) {
			if err := db.Migrator().CreateTable(m); err != nil {
				return errors.Wrapf(err, "create table for %T", m)
			}
			log.Info("Created table", zap.String("model", fmt.Sprintf("%T", m)))
			continue
		}
		if err := db.Migrator().AutoMigrate(m); err != nil {
			return errors.Wrapf(err, "migrate %T", m)
		}
		log.Debug("Updated table", zap.String("model", fmt.Sprintf("%T", m)))
	}
	return nil
}
