package db

import "context"

type DBType string

const (
	Postgres DBType = "postgres"
	Mongo    DBType = "mongo"
	SQLite   DBType = "sqlite"
)

// DB is a long-lived store handle owned by the process root.
type DB interface {
	Connect(ctx context.Context) error
	Disconnect() error
}
