package repositories

import (
	"context"
	"fmt"

	"crowdfund-ledger/internal/models"
)

// DonationRepository appends and lists settled donations
type DonationRepository struct {
	db DBTX
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db DBTX) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create appends a donation record
func (r *DonationRepository) Create(ctx context.Context, userID, campaignID, amount int64) (*models.DonationHistory, error) {
	query := `
		INSERT INTO donation_histories (user_id, campaign_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, campaign_id, amount, created_at`

	donation := &models.DonationHistory{}
	err := r.db.QueryRowContext(ctx, query, userID, campaignID, amount).Scan(
		&donation.ID,
		&donation.UserID,
		&donation.CampaignID,
		&donation.Amount,
		&donation.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	return donation, nil
}

// ListByUser lists a donor's donations with campaign titles, most recent first
func (r *DonationRepository) ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.DonationHistory, error) {
	opts = opts.Normalize()
	query := `
		SELECT d.id, d.user_id, d.campaign_id, d.amount, d.created_at, c.title
		FROM donation_histories d
		JOIN campaigns c ON c.id = d.campaign_id
		WHERE d.user_id = $1
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	donations := []*models.DonationHistory{}
	for rows.Next() {
		donation := &models.DonationHistory{}
		if err := rows.Scan(
			&donation.ID,
			&donation.UserID,
			&donation.CampaignID,
			&donation.Amount,
			&donation.CreatedAt,
			&donation.CampaignTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, donation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}
	return donations, nil
}
