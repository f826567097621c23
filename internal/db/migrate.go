package db

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/internal/db/migrations"
)

// MigrateUp applies every pending migration for the configured driver.
func MigrateUp(cfg config.DatabaseConfig) error {
	return runMigrations(cfg, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// MigrateDown rolls back the given number of migrations, or all of them
// when steps is zero.
func MigrateDown(cfg config.DatabaseConfig, steps int) error {
	return runMigrations(cfg, func(m *migrate.Migrate) error {
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	})
}

func runMigrations(cfg config.DatabaseConfig, apply func(*migrate.Migrate) error) error {
	migrator, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := apply(migrator); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverPostgres
	}

	sub, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	databaseURL, err := migrationURL(cfg)
	if err != nil {
		_ = source.Close()
		return nil, err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}

func migrationURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "", config.DriverPostgres:
		return PostgresURL(cfg), nil
	case config.DriverSQLite:
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			return "", fmt.Errorf("sqlite database path is required")
		}
		return "sqlite://" + filepath.ToSlash(filepath.Clean(path)) + "?" + sqlitePragmas, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
