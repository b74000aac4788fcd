package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crowdfund-ledger/internal/models"
)

// ProposalRepository stores the proposal a fundraiser registers with
type ProposalRepository struct {
	db DBTX
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db DBTX) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create stores a fundraiser's proposal
func (r *ProposalRepository) Create(ctx context.Context, userID int64, text string) (*models.FundraiserProposal, error) {
	query := `
		INSERT INTO fundraiser_proposals (user_id, text)
		VALUES ($1, $2)
		RETURNING id, user_id, text, created_at`

	proposal := &models.FundraiserProposal{}
	err := r.db.QueryRowContext(ctx, query, userID, text).Scan(
		&proposal.ID,
		&proposal.UserID,
		&proposal.Text,
		&proposal.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

// GetByUserID retrieves the proposal of a fundraiser
func (r *ProposalRepository) GetByUserID(ctx context.Context, userID int64) (*models.FundraiserProposal, error) {
	query := `SELECT id, user_id, text, created_at FROM fundraiser_proposals WHERE user_id = $1`

	proposal := &models.FundraiserProposal{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&proposal.ID,
		&proposal.UserID,
		&proposal.Text,
		&proposal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundError("proposal")
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}
