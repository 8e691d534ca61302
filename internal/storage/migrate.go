package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable records the applied version of the entries schema.
const migrationsTable = "entries_schema_migrations"

// ErrDirtySchema means an earlier migration of the entries schema stopped
// half way and needs manual repair.
var ErrDirtySchema = errors.New("entries schema is dirty")

// RunMigrations brings the entries schema at dbPath up to date.
func RunMigrations(dbPath string) error {
	return withMigrator(dbPath, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			var dirty migrate.ErrDirty
			if errors.As(err, &dirty) {
				return fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
			}
			return fmt.Errorf("migrate entries schema: %w", err)
		}
		return nil
	})
}

// SchemaVersion reports the applied entries schema version; 0 means none.
func SchemaVersion(dbPath string) (uint, error) {
	var version uint
	err := withMigrator(dbPath, func(m *migrate.Migrate) error {
		v, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			return nil
		case err != nil:
			return fmt.Errorf("read entries schema version: %w", err)
		case dirty:
			return fmt.Errorf("%w at version %d", ErrDirtySchema, v)
		}
		version = v
		return nil
	})
	return version, err
}

// withMigrator runs fn over its own connection; closing the migrator
// closes that connection, never the repository's.
func withMigrator(dbPath string, fn func(*migrate.Migrate) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded entries migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	return fn(m)
}
