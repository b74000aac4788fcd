package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crowdfund-ledger/internal/models"
)

// TopUpRepository handles wallet top-up requests
type TopUpRepository struct {
	db DBTX
}

// NewTopUpRepository creates a new top-up repository
func NewTopUpRepository(db DBTX) *TopUpRepository {
	return &TopUpRepository{db: db}
}

const topUpColumns = `t.id, t.user_id, t.amount, t.bank_name, t.bank_account, t.bank_account_number,
	t.status, t.requested_at, t.verified_at`

func scanTopUp(row rowScanner, extra ...interface{}) (*models.TopUpHistory, error) {
	topUp := &models.TopUpHistory{}
	var verifiedAt sql.NullTime

	dest := []interface{}{
		&topUp.ID,
		&topUp.UserID,
		&topUp.Amount,
		&topUp.BankName,
		&topUp.BankAccount,
		&topUp.BankAccountNumber,
		&topUp.Status,
		&topUp.RequestedAt,
		&verifiedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	topUp.VerifiedAt = nullTimePtr(verifiedAt)
	return topUp, nil
}

// Create inserts a PENDING top-up request
func (r *TopUpRepository) Create(ctx context.Context, userID int64, req *models.TopUpCreateRequest) (*models.TopUpHistory, error) {
	query := `
		INSERT INTO top_up_histories AS t (user_id, amount, bank_name, bank_account, bank_account_number, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
		RETURNING ` + topUpColumns

	topUp, err := scanTopUp(r.db.QueryRowContext(ctx, query,
		userID,
		req.Amount,
		req.BankName,
		req.BankAccount,
		req.BankAccountNumber,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create top-up: %w", err)
	}
	return topUp, nil
}

// GetForUpdate retrieves a top-up request and locks the row
func (r *TopUpRepository) GetForUpdate(ctx context.Context, id int64) (*models.TopUpHistory, error) {
	query := `SELECT ` + topUpColumns + ` FROM top_up_histories t WHERE t.id = $1 FOR UPDATE`

	topUp, err := scanTopUp(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundError("top-up")
		}
		return nil, fmt.Errorf("failed to get top-up: %w", err)
	}
	return topUp, nil
}

// SetStatus settles a PENDING top-up. Zero rows means the request already
// left PENDING.
func (r *TopUpRepository) SetStatus(ctx context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error {
	query := `
		UPDATE top_up_histories
		SET status = $2, verified_at = $3
		WHERE id = $1 AND status = 'PENDING'`

	result, err := r.db.ExecContext(ctx, query, id, status, verifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update top-up status: %w", err)
	}
	return expectOneRow(result, pendingGuardError("top-up"))
}

// ListByStatus lists top-ups in a status with the requester's email
func (r *TopUpRepository) ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	opts = opts.Normalize()
	query := `
		SELECT ` + topUpColumns + `, u.email
		FROM top_up_histories t
		JOIN users u ON u.id = t.user_id
		WHERE t.status = $1
		ORDER BY t.requested_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, status, opts.Limit, opts.Offset)
}

// ListByUser lists a donor's top-ups
func (r *TopUpRepository) ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	opts = opts.Normalize()
	query := `
		SELECT ` + topUpColumns + `, u.email
		FROM top_up_histories t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1
		ORDER BY t.requested_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, opts.Limit, opts.Offset)
}

func (r *TopUpRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.TopUpHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top-ups: %w", err)
	}
	defer rows.Close()

	topUps := []*models.TopUpHistory{}
	for rows.Next() {
		var email string
		topUp, err := scanTopUp(rows, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top-up: %w", err)
		}
		topUp.UserEmail = email
		topUps = append(topUps, topUp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top-ups: %w", err)
	}
	return topUps, nil
}
