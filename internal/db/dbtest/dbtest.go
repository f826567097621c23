// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/internal/db"
)

// Config returns a sqlite configuration rooted in a per-test directory.
func Config(t testing.TB) config.Config {
	t.Helper()
	return config.Config{
		PageSize: 5,
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "forum.db"),
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
		},
	}
}

// Open returns a migrated database that is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	return OpenConfig(t, Config(t))
}

// OpenConfig migrates and opens the database described by cfg.
func OpenConfig(t testing.TB, cfg config.Config) *sql.DB {
	t.Helper()
	if err := db.MigrateUp(cfg.Database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
