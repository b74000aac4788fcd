package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"crowdfund-ledger/internal/models"
)

// AuditLogRepository handles the admin audit log
type AuditLogRepository struct {
	db DBTX
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

const auditColumns = `id, admin_user_id, action, target_type, target_id, details, created_at`

func scanAuditEntry(row rowScanner) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{}
	var details []byte
	if err := row.Scan(
		&entry.ID,
		&entry.AdminUserID,
		&entry.Action,
		&entry.TargetType,
		&entry.TargetID,
		&details,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to decode audit details: %w", err)
		}
	}
	return entry, nil
}

// Create appends an audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	details := entry.Details
	if details == nil {
		details = map[string]int64{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO admin_audit_log (admin_user_id, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + auditColumns

	created, err := scanAuditEntry(r.db.QueryRowContext(ctx, query,
		entry.AdminUserID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		string(encoded),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}
	return created, nil
}

// List returns the newest entries first, optionally for one target type
func (r *AuditLogRepository) List(ctx context.Context, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error) {
	opts = opts.Normalize()
	query := `
		SELECT ` + auditColumns + `
		FROM admin_audit_log
		WHERE ($1 = '' OR target_type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, targetType, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	entries := []*models.AuditEntry{}
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}
	return entries, nil
}
