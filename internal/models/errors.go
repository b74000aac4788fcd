package models

import "fmt"

// ErrorKind classifies ledger failures. Callers match on kind with errors.Is
// and read the machine-readable Code for the exact reason.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_failed"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindExceedsTarget     ErrorKind = "exceeds_target"
	KindExceedsAvailable  ErrorKind = "exceeds_available"
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindNotFound          ErrorKind = "not_found"
	KindAlreadyVerified   ErrorKind = "already_verified"
	KindAlreadyRejected   ErrorKind = "already_rejected"
	KindConflict          ErrorKind = "conflict"
)

// Machine-readable failure codes returned to callers
const (
	CodeMissingID             = "missing-id"
	CodeInvalidID             = "invalid-id"
	CodeInvalidStatus         = "invalid-status"
	CodeInvalidKind           = "invalid-kind"
	CodeInvalidAmount         = "invalid-amount"
	CodeBelowMinimum          = "below-minimum"
	CodeMissingField          = "missing-field"
	CodeMissingProposal       = "missing-proposal"
	CodeInvalidInput          = "invalid-input"
	CodeInsufficientFunds     = "insufficient-funds"
	CodeExceedsTarget         = "exceeds-target"
	CodeExceedsAvailable      = "exceeds-available"
	CodeForbiddenRole         = "forbidden-role"
	CodeCampaignNotVerified   = "campaign-not-verified"
	CodeNotVerifiedFundraiser = "not-verified-fundraiser"
	CodeInvalidCredential     = "invalid-credential"
	CodeNotFound              = "not-found"
	CodeVerified              = "verified"
	CodeRejected              = "rejected"
	CodeStopped               = "stopped"
	CodeDuplicateEmail        = "duplicate-email"
	CodeTxConflict            = "tx-conflict"
)

// LedgerError is the structured failure returned by every engine operation
type LedgerError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *LedgerError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any LedgerError of the same kind, so errors.Is(err, ErrNotFound)
// holds regardless of code or message.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrValidation        = &LedgerError{Kind: KindValidation}
	ErrInsufficientFunds = &LedgerError{Kind: KindInsufficientFunds}
	ErrExceedsTarget     = &LedgerError{Kind: KindExceedsTarget}
	ErrExceedsAvailable  = &LedgerError{Kind: KindExceedsAvailable}
	ErrForbidden         = &LedgerError{Kind: KindForbidden}
	ErrUnauthorized      = &LedgerError{Kind: KindUnauthorized}
	ErrNotFound          = &LedgerError{Kind: KindNotFound}
	ErrAlreadyVerified   = &LedgerError{Kind: KindAlreadyVerified}
	ErrAlreadyRejected   = &LedgerError{Kind: KindAlreadyRejected}
	ErrConflict          = &LedgerError{Kind: KindConflict}
)

// NewError builds a LedgerError
func NewError(kind ErrorKind, code, message string) *LedgerError {
	return &LedgerError{Kind: kind, Code: code, Message: message}
}

// ValidationError reports a malformed or missing input field
func ValidationError(code, message string) *LedgerError {
	return NewError(KindValidation, code, message)
}

// NotFoundError reports a missing record of the given entity
func NotFoundError(entity string) *LedgerError {
	return NewError(KindNotFound, CodeNotFound, entity+" not found")
}

// ForbiddenError reports an unmet role, ownership or verification precondition
func ForbiddenError(code, message string) *LedgerError {
	return NewError(KindForbidden, code, message)
}

// InsufficientFundsError reports a debit that would drive a balance negative
func InsufficientFundsError(message string) *LedgerError {
	return NewError(KindInsufficientFunds, CodeInsufficientFunds, message)
}

// ConflictError reports a lost race or a duplicate that the caller may retry
func ConflictError(code, message string) *LedgerError {
	return NewError(KindConflict, code, message)
}
