package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// UserRole is the closed set of roles the engine checks itself
type UserRole string

const (
	RoleDonor      UserRole = "DONOR"
	RoleFundraiser UserRole = "FUNDRAISER"
	RoleAdmin      UserRole = "ADMIN"
)

// ParseRole validates a role string
func ParseRole(raw string) (UserRole, error) {
	switch r := UserRole(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleDonor, RoleFundraiser, RoleAdmin:
		return r, nil
	}
	return "", errors.New("role must be DONOR, FUNDRAISER or ADMIN")
}

// User represents an account and its wallet balance
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	Verified     bool      `json:"verified" db:"verified"`
	WalletAmount int64     `json:"wallet_amount" db:"wallet_amount"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Principal is the authenticated caller threaded into every engine call
type Principal struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
}

// FundraiserProposal is the free-text pitch a fundraiser registers with
type FundraiserProposal struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PendingFundraiser is an unverified fundraiser listed with its proposal
type PendingFundraiser struct {
	User         *User  `json:"user"`
	ProposalText string `json:"proposal_text"`
}

// RegisterRequest represents the data needed to create a new account
type RegisterRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Role         UserRole `json:"role"`
	ProposalText string   `json:"proposal_text"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates registration data. Admin accounts cannot self-register.
func (req *RegisterRequest) Validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Email) > 255 || !emailRegex.MatchString(req.Email) {
		return ValidationError(CodeInvalidInput, "email format is invalid")
	}

	if len(req.Password) < 8 {
		return ValidationError(CodeInvalidInput, "password must be at least 8 characters long")
	}
	if len(req.Password) > 128 {
		return ValidationError(CodeInvalidInput, "password must be less than 128 characters")
	}

	if strings.TrimSpace(req.FirstName) == "" || len(req.FirstName) > 100 || len(req.LastName) > 100 {
		return ValidationError(CodeInvalidInput, "first name is required and names must be under 100 characters")
	}

	switch req.Role {
	case RoleDonor:
	case RoleFundraiser:
		if strings.TrimSpace(req.ProposalText) == "" {
			return ValidationError(CodeMissingProposal, "fundraiser must provide a proposal")
		}
	default:
		return ValidationError(CodeInvalidInput, "role must be DONOR or FUNDRAISER")
	}

	return nil
}
