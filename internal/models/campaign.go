package models

import (
	"strings"
	"time"
)

// Campaign is a fundraiser's donation program and its held balances
type Campaign struct {
	ID           int64              `json:"id" db:"id"`
	FundraiserID int64              `json:"fundraiser_id" db:"fundraiser_id"`
	Title        string             `json:"title" db:"title"`
	Description  string             `json:"description" db:"description"`
	ImageURL     string             `json:"image_url" db:"image_url"`
	TargetAmount int64              `json:"target_amount" db:"target_amount"`
	// Amount is what the campaign holds and may still reserve for withdrawal
	Amount int64 `json:"amount" db:"amount"`
	// WithdrawAmount is reserved by pending withdrawal requests
	WithdrawAmount int64 `json:"withdraw_amount" db:"withdraw_amount"`
	// DonatedAmount is the lifetime total of settled donations
	DonatedAmount int64              `json:"donated_amount" db:"donated_amount"`
	Status        VerificationStatus `json:"status" db:"status"`
	VerifiedAt    *time.Time         `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// AcceptsFunds reports whether donations and withdrawal requests are allowed
func (c *Campaign) AcceptsFunds() bool {
	return c.Status == StatusVerified
}

// CampaignCreateRequest represents a fundraiser's new campaign proposal
type CampaignCreateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TargetAmount int64  `json:"target_amount"`
}

// Validate validates the campaign create request
func (r *CampaignCreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ValidationError(CodeMissingField, "title is required")
	}
	if len(r.Title) > 255 {
		return ValidationError(CodeInvalidInput, "title must be less than 255 characters")
	}
	if strings.TrimSpace(r.Description) == "" {
		return ValidationError(CodeMissingField, "description is required")
	}
	return checkAmount(r.TargetAmount, "target amount")
}
