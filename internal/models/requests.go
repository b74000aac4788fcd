package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a record id supplied by a caller. An absent id and a
// malformed one are reported with distinct codes.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ValidationError(CodeMissingID, "id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidationError(CodeInvalidID, "id must be a number")
	}
	return id, nil
}

// MaxAmount bounds every single amount a caller may submit
const MaxAmount int64 = 2147483647

// checkAmount rejects non-positive amounts and amounts above MaxAmount
func checkAmount(amount int64, field string) error {
	if amount <= 0 {
		return ValidationError(CodeInvalidAmount, field+" must be positive")
	}
	if amount > MaxAmount {
		return ValidationError(CodeInvalidAmount, fmt.Sprintf("%s must not exceed %d", field, MaxAmount))
	}
	return nil
}

// VerifyRequest represents an admin's verify/reject decision on a record
type VerifyRequest struct {
	Kind   RecordKind `json:"-"`
	ID     string     `json:"id"`
	Status string     `json:"status"`
}

// ListOptions carries pagination for pass-through listings
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps the page size
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 || o.Limit > 100 {
		o.Limit = 20
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
