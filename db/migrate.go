package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrator over the embedded schema for the given SQL backend.
func NewMigrator(conn *sql.DB, kind DBType) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch kind {
	case Postgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	case SQLite:
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("no SQL migrations for %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("start %s migration driver: %w", kind, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(kind))
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(kind), driver)
	if err != nil {
		return nil, fmt.Errorf("migration failed to start: %w", err)
	}
	return m, nil
}

// RunMigrations creates any missing tables. It is called on every startup.
func RunMigrations(conn *sql.DB, kind DBType) error {
	m, err := NewMigrator(conn, kind)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run up migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	slog.Info("Migrations applied", slog.String("backend", string(kind)), slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}
