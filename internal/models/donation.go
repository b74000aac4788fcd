package models

import "time"

// DonationHistory records a settled transfer from a donor wallet into a
// campaign. Rows are append-only.
type DonationHistory struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	CampaignID int64     `json:"campaign_id" db:"campaign_id"`
	Amount     int64     `json:"amount" db:"amount"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Related data
	CampaignTitle string `json:"campaign_title,omitempty"`
}

// DonationCreateRequest represents a donor's donation to a campaign
type DonationCreateRequest struct {
	CampaignID int64  `json:"campaign_id"`
	Amount     int64  `json:"amount"`
	Password   string `json:"password"`
}

// Validate validates the donation request
func (r *DonationCreateRequest) Validate() error {
	if r.CampaignID <= 0 {
		return ValidationError(CodeInvalidID, "campaign id must be a positive number")
	}
	return checkAmount(r.Amount, "amount")
}
