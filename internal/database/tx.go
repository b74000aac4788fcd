package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"crowdfund-ledger/internal/models"
)

// SQLSTATE codes that signal transient contention between transactions
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNumericOverflow      = "22003"
)

// TxRunner executes units of work in one transaction, retrying transparently
// when PostgreSQL aborts the transaction for lock contention.
type TxRunner struct {
	db          *sql.DB
	maxAttempts int
	retryBase   time.Duration
	logger      zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewTxRunner creates a transaction runner. maxAttempts below 1 is treated as 1.
func NewTxRunner(db *sql.DB, maxAttempts int, retryBase time.Duration, logger zerolog.Logger) *TxRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxRunner{
		db:          db,
		maxAttempts: maxAttempts,
		retryBase:   retryBase,
		logger:      logger,
		sleep:       sleepWithContext,
	}
}

// RunInTx runs fn inside a READ COMMITTED transaction. fn is expected to take
// row locks on everything it reads and then writes. Any error from fn rolls
// the transaction back; contention errors are retried up to maxAttempts and
// then reported as a conflict.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffWithJitter(r.retryBase, attempt-1)
			r.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying contended transaction")
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}

	r.logger.Error().Err(lastErr).Int("attempts", r.maxAttempts).Msg("transaction gave up after contention")
	return models.ConflictError(models.CodeTxConflict, "concurrent update in progress, please retry")
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is a transient lock or serialization failure
func IsRetryable(err error) bool {
	switch pqCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation
func IsUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

// IsCheckViolation reports whether err is a CHECK constraint violation
func IsCheckViolation(err error) bool {
	return pqCode(err) == codeCheckViolation
}

// IsNumericOverflow reports whether err is an out-of-range numeric result
func IsNumericOverflow(err error) bool {
	return pqCode(err) == codeNumericOverflow
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// backoffWithJitter returns a random delay in [0, base*2^attempt)
func backoffWithJitter(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 16 {
		attempt = 16
	}
	ceiling := base << attempt
	return time.Duration(rand.Int64N(int64(ceiling)))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transaction retry aborted: %w", ctx.Err())
	}
}
