package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Queries in the SQL repositories are written with ? placeholders and passed
// through sqlx Rebind, so the same text serves postgres ($n) and sqlite (?).

// updateRow applies sets to the rows matched by where and returns how many
// rows were affected.
func updateRow(ctx context.Context, db sqlx.ExtContext, table string, sets []assignment, where string, whereArgs ...any) (int64, error) {
	cols := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+len(whereArgs))
	for _, s := range sets {
		cols = append(cols, s.column+" = ?")
		args = append(args, s.value)
	}
	args = append(args, whereArgs...)

	query := "UPDATE " + table + " SET " + strings.Join(cols, ", ") + " WHERE " + where
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
