// Package sqlite opens the embedded single-file store used for local runs and tests.
package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type SQLiteDB struct {
	Conn *sqlx.DB
	Path string
}

func NewSQLiteDB(path string) *SQLiteDB {
	return &SQLiteDB{Path: path}
}

func (s *SQLiteDB) Connect(ctx context.Context) error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(s.Path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(4)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}
	s.Conn = conn
	return nil
}

func (s *SQLiteDB) Disconnect() error {
	if s.Conn != nil {
		return s.Conn.Close()
	}
	return nil
}
