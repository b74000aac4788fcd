package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crowdfund-ledger/internal/models"
)

// WithdrawalRepository handles withdrawal request data operations
type WithdrawalRepository struct {
	db DBTX
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `w.id, w.user_id, w.campaign_id, w.amount, w.status, w.requested_at, w.verified_at`

func scanWithdrawal(row rowScanner, extra ...interface{}) (*models.WithdrawRequest, error) {
	withdrawal := &models.WithdrawRequest{}
	var verifiedAt sql.NullTime

	dest := []interface{}{
		&withdrawal.ID,
		&withdrawal.UserID,
		&withdrawal.CampaignID,
		&withdrawal.Amount,
		&withdrawal.Status,
		&withdrawal.RequestedAt,
		&verifiedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	withdrawal.VerifiedAt = nullTimePtr(verifiedAt)
	return withdrawal, nil
}

// Create creates a new PENDING withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, userID, campaignID, amount int64) (*models.WithdrawRequest, error) {
	query := `
		INSERT INTO withdraw_requests AS w (user_id, campaign_id, amount, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING ` + withdrawalColumns

	withdrawal, err := scanWithdrawal(r.db.QueryRowContext(ctx, query, userID, campaignID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return withdrawal, nil
}

// GetForUpdate retrieves a withdrawal request and locks the row
func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdraw_requests w WHERE w.id = $1 FOR UPDATE`

	withdrawal, err := scanWithdrawal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundError("withdrawal")
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return withdrawal, nil
}

// SetStatus settles a PENDING withdrawal request
func (r *WithdrawalRepository) SetStatus(ctx context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error {
	query := `
		UPDATE withdraw_requests
		SET status = $2, verified_at = $3
		WHERE id = $1 AND status = 'PENDING'`

	result, err := r.db.ExecContext(ctx, query, id, status, verifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	return expectOneRow(result, pendingGuardError("withdrawal"))
}

// ListByStatus lists withdrawals in a status (for admin)
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	opts = opts.Normalize()
	query := `
		SELECT ` + withdrawalColumns + `, c.title
		FROM withdraw_requests w
		JOIN campaigns c ON c.id = w.campaign_id
		WHERE w.status = $1
		ORDER BY w.requested_at DESC, w.id DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, status, opts.Limit, opts.Offset)
}

// ListByUser lists a fundraiser's withdrawals
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	opts = opts.Normalize()
	query := `
		SELECT ` + withdrawalColumns + `, c.title
		FROM withdraw_requests w
		JOIN campaigns c ON c.id = w.campaign_id
		WHERE w.user_id = $1
		ORDER BY w.requested_at DESC, w.id DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, opts.Limit, opts.Offset)
}

func (r *WithdrawalRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.WithdrawRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := []*models.WithdrawRequest{}
	for rows.Next() {
		var title string
		withdrawal, err := scanWithdrawal(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawal.CampaignTitle = title
		withdrawals = append(withdrawals, withdrawal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}
	return withdrawals, nil
}
