// Package storage provides the relational storage layer for assetd.
//
// Every entity has its own repository interface with a gorm-backed
// implementation. Repositories never hold a database handle of their own:
// each call receives the *Unit it runs in, so the transaction boundary of a
// multi-step operation is visible at every call site.
//
//	err := store.InTx(ctx, func(u *storage.Unit) error {
//	    if err := store.RecoveryKeys.DeleteByAsset(u, id); err != nil {
//	        return err
//	    }
//	    return store.RecoveryKeys.CreateBatch(u, keys)
//	})
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"evalgo.org/assetd/internal/config"
	"evalgo.org/assetd/models"
)

// Storage owns the connection pool and the repositories built on it.
type Storage struct {
	db *gorm.DB

	Assets       AssetRepository
	RecoveryKeys RecoveryKeyRepository
	Licenses     LicenseRepository
	Vlans        VlanRepository
	IPAddresses  IPAddressRepository
	Assignments  IPAssignmentRepository
	Racks        RackRepository
	Switches     SwitchRepository
	Ports        SwitchPortRepository
}

// Open connects to the configured database and, when enabled, migrates the schema.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	slow := cfg.SlowQueryThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	dbLog := log.With().Str("component", "storage").Logger()

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&dbLog, gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// single writer; also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := New(db)
	if cfg.AutoMigrate {
		if err := s.Migrate(context.Background()); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an existing gorm handle with the default repositories.
func New(db *gorm.DB) *Storage {
	return &Storage{
		db:           db,
		Assets:       gormAssets{},
		RecoveryKeys: gormRecoveryKeys{},
		Licenses:     gormLicenses{},
		Vlans:        gormVlans{},
		IPAddresses:  gormIPAddresses{},
		Assignments:  gormAssignments{},
		Racks:        gormRacks{},
		Switches:     gormSwitches{},
		Ports:        gormPorts{},
	}
}

// Migrate creates or updates all tables.
func (s *Storage) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Asset{},
		&models.RecoveryKey{},
		&models.LicenseEntry{},
		&models.Vlan{},
		&models.IPAddress{},
		&models.IPAssignment{},
		&models.Rack{},
		&models.Switch{},
		&models.SwitchPort{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
