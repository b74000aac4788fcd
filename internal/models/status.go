package models

import "strings"

// VerificationStatus is the lifecycle status shared by top-ups, withdrawals
// and campaign proposals
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusVerified VerificationStatus = "VERIFIED"
	StatusRejected VerificationStatus = "REJECTED"
	// StatusStopped only applies to campaigns
	StatusStopped VerificationStatus = "STOPPED"
)

// IsTerminal reports whether no admin transition may leave the status
func (s VerificationStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected || s == StatusStopped
}

// ParseTargetStatus validates an admin-requested target status. Only
// VERIFIED and REJECTED are accepted.
func ParseTargetStatus(raw string) (VerificationStatus, error) {
	switch VerificationStatus(strings.TrimSpace(raw)) {
	case StatusVerified:
		return StatusVerified, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", ValidationError(CodeInvalidStatus, "status must be VERIFIED or REJECTED")
}

// CheckTransition enforces the PENDING-only rule for an admin verification.
// A record already in a terminal state reports which one, so a repeated call
// fails instead of settling twice.
func CheckTransition(current, target VerificationStatus) error {
	if target != StatusVerified && target != StatusRejected {
		return ValidationError(CodeInvalidStatus, "status must be VERIFIED or REJECTED")
	}

	switch current {
	case StatusPending:
		return nil
	case StatusVerified:
		return NewError(KindAlreadyVerified, CodeVerified, "already verified")
	case StatusRejected:
		return NewError(KindAlreadyRejected, CodeRejected, "already rejected")
	case StatusStopped:
		return ConflictError(CodeStopped, "already stopped")
	}
	return ConflictError(CodeInvalidStatus, "record is in unknown status "+string(current))
}

// CheckStop enforces the owner-initiated VERIFIED -> STOPPED campaign transition
func CheckStop(current VerificationStatus) error {
	switch current {
	case StatusVerified:
		return nil
	case StatusPending:
		return ForbiddenError(CodeCampaignNotVerified, "campaign is not verified")
	case StatusRejected:
		return NewError(KindAlreadyRejected, CodeRejected, "already rejected")
	case StatusStopped:
		return ConflictError(CodeStopped, "already stopped")
	}
	return ConflictError(CodeInvalidStatus, "campaign is in unknown status "+string(current))
}

// RecordKind names the ledger record an admin verification targets
type RecordKind string

const (
	RecordTopUp      RecordKind = "topup"
	RecordWithdrawal RecordKind = "withdrawal"
	RecordCampaign   RecordKind = "campaign"
)

// ParseRecordKind validates a record kind
func ParseRecordKind(raw string) (RecordKind, error) {
	switch k := RecordKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case RecordTopUp, RecordWithdrawal, RecordCampaign:
		return k, nil
	}
	return "", ValidationError(CodeInvalidKind, "unknown record kind")
}
