package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"crowdfund-ledger/internal/models"
)

// AccountService registers donors and fundraisers and checks their credentials
type AccountService struct {
	tx          TxRunner
	users       UserRepositoryInterface
	credentials Credentials
	logger      zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(tx TxRunner, users UserRepositoryInterface, credentials Credentials, logger zerolog.Logger) *AccountService {
	return &AccountService{
		tx:          tx,
		users:       users,
		credentials: credentials,
		logger:      logger.With().Str("component", "accounts").Logger(),
	}
}

// Register creates a user, and for fundraisers their proposal, atomically
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.tx.RunInTx(ctx, func(repos *Repositories) error {
		var err error
		user, err = repos.Users.Create(ctx, &models.User{
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         req.Role,
		})
		if err != nil {
			return err
		}
		if req.Role == models.RoleFundraiser {
			if _, err := repos.Proposals.Create(ctx, user.ID, req.ProposalText); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords fail identically.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewError(models.KindUnauthorized, models.CodeInvalidCredential, "invalid email or password")
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	ok, err := s.credentials.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash could not be checked")
		return nil, invalid
	}
	if !ok {
		return nil, invalid
	}
	return user, nil
}
