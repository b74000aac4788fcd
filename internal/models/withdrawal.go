package models

import (
	"time"
)

// WithdrawRequest is a fundraiser's request to move campaign funds into
// their wallet. While PENDING its amount is reserved in the campaign's
// WithdrawAmount.
type WithdrawRequest struct {
	ID          int64              `json:"id" db:"id"`
	UserID      int64              `json:"user_id" db:"user_id"`
	CampaignID  int64              `json:"campaign_id" db:"campaign_id"`
	Amount      int64              `json:"amount" db:"amount"`
	Status      VerificationStatus `json:"status" db:"status"`
	RequestedAt time.Time          `json:"requested_at" db:"requested_at"`
	VerifiedAt  *time.Time         `json:"verified_at,omitempty" db:"verified_at"`

	// Related data
	CampaignTitle string `json:"campaign_title,omitempty"`
}

// WithdrawalCreateRequest represents a request to reserve campaign funds
type WithdrawalCreateRequest struct {
	CampaignID int64 `json:"campaign_id"`
	Amount     int64 `json:"amount"`
}

// Validate validates the withdrawal create request
func (r *WithdrawalCreateRequest) Validate() error {
	if r.CampaignID <= 0 {
		return ValidationError(CodeInvalidID, "campaign id must be a positive number")
	}
	return checkAmount(r.Amount, "amount")
}
