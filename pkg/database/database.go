package database

import (
	"employee-service/internal/model"
	"employee-service/pkg/config"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the PostgreSQL connection, configures the pool and runs
// migrations. The returned handle is injected into the services and handlers;
// there is no package-level connection.
//
// TranslateError is enabled so that a unique-index violation surfaces as
// gorm.ErrDuplicatedKey. The uniqueness constraint on the email columns is
// the actual safety net for concurrent registrations, not application logic.
func Initialize(cfg *config.DBConfig) (*gorm.DB, error) {
	logLevel := cfg.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// PreferSimpleProtocol disables implicit prepared statement usage and
	// avoids "prepared statement already exists" errors behind poolers.
	pgConfig := postgres.Config{
		DSN:                  cfg.GetDSN(),
		PreferSimpleProtocol: true,
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "getting database connection")
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the table structure based on the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Employee{}, &model.User{}); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
