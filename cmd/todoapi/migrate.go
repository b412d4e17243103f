package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"todoapi/config"
	"todoapi/db"
	"todoapi/db/postgres"
	"todoapi/db/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations against a SQL backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run up migrations",
	Long:  "Run all 'up' migrations by default.\nIf step is provided, it will run `N` 'up' migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return err
		}
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if step > 0 {
				return m.Steps(step)
			}
			return m.Up()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Run down migrations",
	Long:  "Run all 'down' migrations by default.\nIf step is provided, it will run `N` 'down' migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return err
		}
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if step > 0 {
				return m.Steps(-step)
			}
			return m.Down()
		})
	},
}

func withMigrator(ctx context.Context, run func(*migrate.Migrate) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.ParseStore()
	if err != nil {
		return err
	}

	var (
		conn *sqlx.DB
		kind = db.DBType(cfg.DBType)
	)
	switch kind {
	case db.Postgres:
		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(ctx); err != nil {
			return err
		}
		defer pg.Disconnect()
		conn = pg.Conn
	case db.SQLite:
		lite := sqlite.NewSQLiteDB(cfg.SQLitePath)
		if err := lite.Connect(ctx); err != nil {
			return err
		}
		defer lite.Disconnect()
		conn = lite.Conn
	default:
		return fmt.Errorf("migrations are not supported for DB_TYPE %q", cfg.DBType)
	}

	m, err := db.NewMigrator(conn.DB, kind)
	if err != nil {
		return err
	}
	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	slog.Info("Migrations done", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

func init() {
	migrateUpCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateUpCmd)

	migrateDownCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateDownCmd)

	rootCmd.AddCommand(migrateCmd)
}
