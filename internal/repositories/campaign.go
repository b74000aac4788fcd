package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/models"
)

// CampaignRepository handles campaign data and held balances
type CampaignRepository struct {
	db DBTX
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db DBTX) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, fundraiser_id, title, description, image_url, target_amount,
	amount, withdraw_amount, donated_amount, status, verified_at, created_at, updated_at`

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	var verifiedAt sql.NullTime

	err := row.Scan(
		&campaign.ID,
		&campaign.FundraiserID,
		&campaign.Title,
		&campaign.Description,
		&campaign.ImageURL,
		&campaign.TargetAmount,
		&campaign.Amount,
		&campaign.WithdrawAmount,
		&campaign.DonatedAmount,
		&campaign.Status,
		&verifiedAt,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.VerifiedAt = nullTimePtr(verifiedAt)
	return campaign, nil
}

// Create inserts a new PENDING campaign with empty balances
func (r *CampaignRepository) Create(ctx context.Context, fundraiserID int64, req *models.CampaignCreateRequest) (*models.Campaign, error) {
	query := `
		INSERT INTO campaigns (fundraiser_id, title, description, image_url, target_amount, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
		RETURNING ` + campaignColumns

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query,
		fundraiserID,
		req.Title,
		req.Description,
		req.ImageURL,
		req.TargetAmount,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	return r.getOne(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
}

// GetForUpdate retrieves a campaign and locks the row until the transaction ends
func (r *CampaignRepository) GetForUpdate(ctx context.Context, id int64) (*models.Campaign, error) {
	return r.getOne(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
}

func (r *CampaignRepository) getOne(ctx context.Context, query string, id int64) (*models.Campaign, error) {
	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundError("campaign")
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

// AdjustBalances applies deltas to the campaign's held, reserved and lifetime
// donated amounts in one statement. No slot may go negative; if one would,
// nothing changes and insufficient funds is reported.
func (r *CampaignRepository) AdjustBalances(ctx context.Context, id int64, amountDelta, withdrawDelta, donatedDelta int64) (*models.Campaign, error) {
	query := `
		UPDATE campaigns
		SET amount = amount + $2,
		    withdraw_amount = withdraw_amount + $3,
		    donated_amount = donated_amount + $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND amount + $2 >= 0
		  AND withdraw_amount + $3 >= 0
		  AND donated_amount + $4 >= 0
		RETURNING ` + campaignColumns

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id, amountDelta, withdrawDelta, donatedDelta))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsCheckViolation(err) {
			return nil, models.InsufficientFundsError("campaign balance is too low")
		}
		if database.IsNumericOverflow(err) {
			return nil, models.ValidationError(models.CodeInvalidAmount, "campaign balance would overflow")
		}
		return nil, fmt.Errorf("failed to adjust campaign balances: %w", err)
	}
	return campaign, nil
}

// SetStatus moves a campaign from one status to another. The write only
// applies while the row is still in the expected status. A nil verifiedAt
// leaves the stored timestamp untouched.
func (r *CampaignRepository) SetStatus(ctx context.Context, id int64, from, to models.VerificationStatus, verifiedAt *time.Time) error {
	query := `
		UPDATE campaigns
		SET status = $3, verified_at = COALESCE($4, verified_at), updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to, toNullTime(verifiedAt))
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	return expectOneRow(result, models.ConflictError(models.CodeInvalidStatus, "campaign status changed concurrently"))
}

// ListByStatus lists campaigns in a status, most recent first
func (r *CampaignRepository) ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.Campaign, error) {
	opts = opts.Normalize()
	return r.list(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, status, opts.Limit, opts.Offset)
}

// ListByFundraiser lists every campaign a fundraiser owns
func (r *CampaignRepository) ListByFundraiser(ctx context.Context, fundraiserID int64, opts models.ListOptions) ([]*models.Campaign, error) {
	opts = opts.Normalize()
	return r.list(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE fundraiser_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, fundraiserID, opts.Limit, opts.Offset)
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}
	return campaigns, nil
}
