package models

import (
	"strings"
	"time"
)

// AuditAction names an admin decision recorded in the audit log
type AuditAction string

const (
	AuditVerify           AuditAction = "VERIFY"
	AuditReject           AuditAction = "REJECT"
	AuditVerifyFundraiser AuditAction = "VERIFY_FUNDRAISER"
)

// AuditTargetFundraiser is the target type of fundraiser verifications.
// Record decisions use the RecordKind as target type.
const AuditTargetFundraiser = "fundraiser"

// ActionForStatus maps an admin target status to its audit action
func ActionForStatus(status VerificationStatus) AuditAction {
	if status == StatusRejected {
		return AuditReject
	}
	return AuditVerify
}

// AuditEntry is one admin decision. It is written in the same transaction
// as the state change it describes.
type AuditEntry struct {
	ID          int64            `json:"id" db:"id"`
	AdminUserID int64            `json:"admin_user_id" db:"admin_user_id"`
	Action      AuditAction      `json:"action" db:"action"`
	TargetType  string           `json:"target_type" db:"target_type"`
	TargetID    int64            `json:"target_id" db:"target_id"`
	Details     map[string]int64 `json:"details" db:"details"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// ParseAuditTarget validates an optional target type filter
func ParseAuditTarget(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == AuditTargetFundraiser {
		return raw, nil
	}
	kind, err := ParseRecordKind(raw)
	if err != nil {
		return "", ValidationError(CodeInvalidKind, "unknown audit target type")
	}
	return string(kind), nil
}
