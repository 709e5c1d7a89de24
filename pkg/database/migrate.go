package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

type MigrationConfig struct {
	MigrationsPath string
	DBName         string
	MaxRetries     int
	RetryDelay     time.Duration
}

func DefaultMigrationConfig(path string) *MigrationConfig {
	if path == "" {
		path = "file://migrations"
	}
	return &MigrationConfig{
		MigrationsPath: path,
		DBName:         "reliance",
		MaxRetries:     5,
		RetryDelay:     2 * time.Second,
	}
}

// MigrateUp applies every pending migration
func MigrateUp(db *gorm.DB, cfg *MigrationConfig) error {
	m, err := newMigrator(db, cfg)
	if err != nil {
		return err
	}

	logVersion(m, "Current")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[Migrate] Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logVersion(m, "Final")
	return nil
}

// MigrateDown rolls back the given number of migrations
func MigrateDown(db *gorm.DB, cfg *MigrationConfig, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrator(db, cfg)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	logVersion(m, "Final")
	return nil
}

// MigrationVersion returns the applied version; version 0 means nothing has run
func MigrationVersion(db *gorm.DB, cfg *MigrationConfig) (uint, bool, error) {
	m, err := newMigrator(db, cfg)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrator(db *gorm.DB, cfg *MigrationConfig) (*migrate.Migrate, error) {
	if cfg == nil {
		cfg = DefaultMigrationConfig("")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := waitForDatabase(sqlDB, cfg.MaxRetries, cfg.RetryDelay); err != nil {
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{
		DatabaseName:          cfg.DBName,
		MigrationsTable:       "schema_migrations",
		MultiStatementEnabled: true,
		MultiStatementMaxSize: 10 * 1 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, cfg.DBName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func waitForDatabase(db *sql.DB, maxRetries int, retryDelay time.Duration) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		if err := db.Ping(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Printf("[Migrate] Database not ready, retrying in %v (attempt %d/%d)", retryDelay, i+1, maxRetries)
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

func logVersion(m *migrate.Migrate, label string) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Printf("[Migrate] %s version: none", label)
	case err != nil:
		log.Printf("[Migrate] Could not read migration version: %v", err)
	default:
		log.Printf("[Migrate] %s version: %d (dirty: %v)", label, version, dirty)
	}
}
