package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crowdfund-ledger/internal/models"
)

// LedgerService is the transaction engine. Every mutating operation checks
// the caller's role, then validates and applies its effects inside one
// transaction with the affected rows locked in a fixed order: ledger record,
// then campaign, then user.
type LedgerService struct {
	tx          TxRunner
	credentials Credentials
	minTopUp    int64
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(tx TxRunner, credentials Credentials, minTopUp int64, logger zerolog.Logger) *LedgerService {
	if minTopUp <= 0 {
		minTopUp = models.DefaultMinTopUpAmount
	}
	return &LedgerService{
		tx:          tx,
		credentials: credentials,
		minTopUp:    minTopUp,
		logger:      logger.With().Str("component", "ledger").Logger(),
		now:         time.Now,
	}
}

func requireRole(p models.Principal, role models.UserRole) error {
	if p.UserID <= 0 {
		return models.NewError(models.KindUnauthorized, models.CodeInvalidCredential, "authentication required")
	}
	if p.Role != role {
		return models.ForbiddenError(models.CodeForbiddenRole, fmt.Sprintf("only %s may perform this operation", role))
	}
	return nil
}

// Donate moves amount from the donor's wallet into the campaign
func (s *LedgerService) Donate(ctx context.Context, p models.Principal, req *models.DonationCreateRequest) (*models.DonationHistory, error) {
	if err := requireRole(p, models.RoleDonor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var donation *models.DonationHistory
	err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		campaign, err := repos.Campaigns.GetForUpdate(ctx, req.CampaignID)
		if err != nil {
			return err
		}
		if !campaign.AcceptsFunds() {
			return models.ForbiddenError(models.CodeCampaignNotVerified, "campaign is not accepting donations")
		}

		donor, err := repos.Users.GetForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		if err := s.checkCredential(req.Password, donor); err != nil {
			return err
		}

		if donor.WalletAmount < req.Amount {
			return models.InsufficientFundsError("wallet balance is too low")
		}
		// static target cap, not remaining headroom
		if req.Amount > campaign.TargetAmount {
			return models.NewError(models.KindExceedsTarget, models.CodeExceedsTarget, "amount exceeds the campaign target")
		}

		if _, err := repos.Users.AdjustWallet(ctx, donor.ID, -req.Amount); err != nil {
			return err
		}
		if _, err := repos.Campaigns.AdjustBalances(ctx, campaign.ID, req.Amount, 0, req.Amount); err != nil {
			return err
		}
		donation, err = repos.Donations.Create(ctx, donor.ID, campaign.ID, req.Amount)
		if err != nil {
			return err
		}
		donation.CampaignTitle = campaign.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("donation_id", donation.ID).
		Int64("user_id", p.UserID).
		Int64("campaign_id", donation.CampaignID).
		Int64("amount", donation.Amount).
		Msg("donation settled")
	return donation, nil
}

func (s *LedgerService) checkCredential(password string, user *models.User) error {
	invalid := models.NewError(models.KindUnauthorized, models.CodeInvalidCredential, "password is incorrect")
	if password == "" {
		return invalid
	}
	ok, err := s.credentials.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash could not be checked")
		return invalid
	}
	if !ok {
		return invalid
	}
	return nil
}

// RequestTopUp records a PENDING top-up. The wallet is credited on verification.
func (s *LedgerService) RequestTopUp(ctx context.Context, p models.Principal, req *models.TopUpCreateRequest) (*models.TopUpHistory, error) {
	if err := requireRole(p, models.RoleDonor); err != nil {
		return nil, err
	}
	if err := req.Validate(s.minTopUp); err != nil {
		return nil, err
	}

	var topUp *models.TopUpHistory
	err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		if _, err := repos.Users.GetByID(ctx, p.UserID); err != nil {
			return err
		}
		var err error
		topUp, err = repos.TopUps.Create(ctx, p.UserID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("topup_id", topUp.ID).Int64("user_id", p.UserID).Int64("amount", topUp.Amount).Msg("top-up requested")
	return topUp, nil
}

// RequestWithdrawal reserves amount of the campaign's held funds and records
// a PENDING withdrawal request.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, p models.Principal, req *models.WithdrawalCreateRequest) (*models.WithdrawRequest, error) {
	if err := requireRole(p, models.RoleFundraiser); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var withdrawal *models.WithdrawRequest
	err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		campaign, err := repos.Campaigns.GetForUpdate(ctx, req.CampaignID)
		if err != nil {
			return err
		}
		fundraiser, err := repos.Users.GetForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}

		if !fundraiser.Verified {
			return models.ForbiddenError(models.CodeNotVerifiedFundraiser, "fundraiser is not verified")
		}
		if campaign.FundraiserID != fundraiser.ID {
			return models.NotFoundError("campaign")
		}
		if !campaign.AcceptsFunds() {
			return models.ForbiddenError(models.CodeCampaignNotVerified, "campaign is not verified")
		}
		if req.Amount > campaign.Amount {
			return models.NewError(models.KindExceedsAvailable, models.CodeExceedsAvailable,
				fmt.Sprintf("amount exceeds available campaign funds (%d)", campaign.Amount))
		}

		if _, err := repos.Campaigns.AdjustBalances(ctx, campaign.ID, -req.Amount, req.Amount, 0); err != nil {
			return err
		}
		withdrawal, err = repos.Withdrawals.Create(ctx, fundraiser.ID, campaign.ID, req.Amount)
		if err != nil {
			return err
		}
		withdrawal.CampaignTitle = campaign.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("withdrawal_id", withdrawal.ID).
		Int64("campaign_id", withdrawal.CampaignID).
		Int64("amount", withdrawal.Amount).
		Msg("withdrawal reserved")
	return withdrawal, nil
}

// VerifyFundraiser flips a fundraiser's verified flag. There is no way back.
func (s *LedgerService) VerifyFundraiser(ctx context.Context, p models.Principal, rawUserID string) (*models.User, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	userID, err := models.ParseID(rawUserID)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.tx.RunInTx(ctx, func(repos *Repositories) error {
		var err error
		user, err = repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.Role != models.RoleFundraiser {
			return models.NotFoundError("fundraiser")
		}
		if user.Verified {
			return models.NewError(models.KindAlreadyVerified, models.CodeVerified, "already verified")
		}
		if err := repos.Users.MarkVerified(ctx, user.ID); err != nil {
			return err
		}
		user.Verified = true
		_, err = repos.Audit.Create(ctx, &models.AuditEntry{
			AdminUserID: p.UserID,
			Action:      models.AuditVerifyFundraiser,
			TargetType:  models.AuditTargetFundraiser,
			TargetID:    user.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Int64("admin_id", p.UserID).Msg("fundraiser verified")
	return user, nil
}

// CreateCampaign records a PENDING campaign for a verified fundraiser
func (s *LedgerService) CreateCampaign(ctx context.Context, p models.Principal, req *models.CampaignCreateRequest) (*models.Campaign, error) {
	if err := requireRole(p, models.RoleFundraiser); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var campaign *models.Campaign
	err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		fundraiser, err := repos.Users.GetForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		if !fundraiser.Verified {
			return models.ForbiddenError(models.CodeNotVerifiedFundraiser, "fundraiser is not verified")
		}
		campaign, err = repos.Campaigns.Create(ctx, fundraiser.ID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("campaign_id", campaign.ID).Int64("fundraiser_id", p.UserID).Msg("campaign proposed")
	return campaign, nil
}

// StopCampaign closes a VERIFIED campaign to further donations and withdrawals
func (s *LedgerService) StopCampaign(ctx context.Context, p models.Principal, campaignID int64) (*models.Campaign, error) {
	if err := requireRole(p, models.RoleFundraiser); err != nil {
		return nil, err
	}
	if campaignID <= 0 {
		return nil, models.ValidationError(models.CodeInvalidID, "campaign id must be a positive number")
	}

	var campaign *models.Campaign
	err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		var err error
		campaign, err = repos.Campaigns.GetForUpdate(ctx, campaignID)
		if err != nil {
			return err
		}
		if campaign.FundraiserID != p.UserID {
			return models.NotFoundError("campaign")
		}
		if err := models.CheckStop(campaign.Status); err != nil {
			return err
		}
		if err := repos.Campaigns.SetStatus(ctx, campaign.ID, models.StatusVerified, models.StatusStopped, nil); err != nil {
			return err
		}
		campaign.Status = models.StatusStopped
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("campaign_id", campaign.ID).Msg("campaign stopped")
	return campaign, nil
}
