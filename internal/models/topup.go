package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMinTopUpAmount is the smallest top-up a donor may request
const DefaultMinTopUpAmount int64 = 5000

// TopUpHistory is a donor's request to credit their wallet. The wallet is
// only credited when an admin verifies it.
type TopUpHistory struct {
	ID                int64              `json:"id" db:"id"`
	UserID            int64              `json:"user_id" db:"user_id"`
	Amount            int64              `json:"amount" db:"amount"`
	BankName          string             `json:"bank_name" db:"bank_name"`
	BankAccount       string             `json:"bank_account" db:"bank_account"`
	BankAccountNumber string             `json:"bank_account_number" db:"bank_account_number"`
	Status            VerificationStatus `json:"status" db:"status"`
	RequestedAt       time.Time          `json:"requested_at" db:"requested_at"`
	VerifiedAt        *time.Time         `json:"verified_at,omitempty" db:"verified_at"`

	// Related data
	UserEmail string `json:"user_email,omitempty"`
}

// TopUpCreateRequest represents a donor's top-up request
type TopUpCreateRequest struct {
	Amount            int64  `json:"amount"`
	BankName          string `json:"bank_name"`
	BankAccount       string `json:"bank_account"`
	BankAccountNumber string `json:"bank_account_number"`
}

// Validate validates the top-up request against the configured minimum
func (r *TopUpCreateRequest) Validate(minAmount int64) error {
	if r.Amount < minAmount {
		return ValidationError(CodeBelowMinimum, fmt.Sprintf("amount must be at least %d", minAmount))
	}
	if err := checkAmount(r.Amount, "amount"); err != nil {
		return err
	}
	if strings.TrimSpace(r.BankName) == "" || strings.TrimSpace(r.BankAccount) == "" || strings.TrimSpace(r.BankAccountNumber) == "" {
		return ValidationError(CodeMissingField, "bank name, account and account number are required")
	}
	return nil
}
