package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crowdfund-ledger/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository can run
// either standalone or inside a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// expectOneRow turns a zero-row guarded update into the given error
func expectOneRow(result sql.Result, onZero error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return onZero
	}
	return nil
}

func pendingGuardError(entity string) error {
	return models.ConflictError(models.CodeInvalidStatus, entity+" is no longer pending")
}
