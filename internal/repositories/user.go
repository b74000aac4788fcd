package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/models"
)

// UserRepository handles user and wallet data operations
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, verified, wallet_amount, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Verified,
		&user.WalletAmount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user. PasswordHash must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Verified,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.ConflictError(models.CodeDuplicateEmail, fmt.Sprintf("user with email %s already exists", user.Email))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email (for authentication)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetForUpdate retrieves a user and locks the row until the transaction ends
func (r *UserRepository) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AdjustWallet adds delta to the wallet and returns the new balance. A debit
// that would take the balance below zero changes nothing and reports
// insufficient funds.
func (r *UserRepository) AdjustWallet(ctx context.Context, id int64, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET wallet_amount = wallet_amount + $2, updated_at = NOW()
		WHERE id = $1 AND wallet_amount + $2 >= 0
		RETURNING wallet_amount`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsCheckViolation(err) {
			return 0, models.InsufficientFundsError("wallet balance is too low")
		}
		if database.IsNumericOverflow(err) {
			return 0, models.ValidationError(models.CodeInvalidAmount, "wallet balance would overflow")
		}
		return 0, fmt.Errorf("failed to adjust wallet: %w", err)
	}

	return balance, nil
}

// MarkVerified flips a fundraiser's verified flag. It is one-way.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND role = 'FUNDRAISER' AND verified = FALSE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to verify fundraiser: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewError(models.KindAlreadyVerified, models.CodeVerified, "already verified")
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOneRow(result, models.NotFoundError("user"))
}

// SetRole changes a user's role (used by the admin bootstrap command)
func (r *UserRepository) SetRole(ctx context.Context, id int64, role models.UserRole) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return expectOneRow(result, models.NotFoundError("user"))
}

// ListPendingFundraisers lists unverified fundraisers with their proposal text
func (r *UserRepository) ListPendingFundraisers(ctx context.Context, opts models.ListOptions) ([]*models.PendingFundraiser, error) {
	opts = opts.Normalize()
	query := `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role, u.verified,
		       u.wallet_amount, u.created_at, u.updated_at, COALESCE(p.text, '')
		FROM users u
		LEFT JOIN fundraiser_proposals p ON p.user_id = u.id
		WHERE u.role = 'FUNDRAISER' AND u.verified = FALSE
		ORDER BY u.created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending fundraisers: %w", err)
	}
	defer rows.Close()

	pending := []*models.PendingFundraiser{}
	for rows.Next() {
		user := &models.User{}
		item := &models.PendingFundraiser{User: user}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.Verified,
			&user.WalletAmount,
			&user.CreatedAt,
			&user.UpdatedAt,
			&item.ProposalText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fundraiser: %w", err)
		}
		pending = append(pending, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundraisers: %w", err)
	}
	return pending, nil
}
