package services

import (
	"context"

	"crowdfund-ledger/internal/models"
)

// QueryService serves the read-only listings. Reads run outside the ledger
// transactions and only enforce visibility by role and ownership.
type QueryService struct {
	repos *Repositories
}

// NewQueryService creates a new query service
func NewQueryService(repos *Repositories) *QueryService {
	return &QueryService{repos: repos}
}

func requireAnyRole(p models.Principal, roles ...models.UserRole) error {
	if p.UserID <= 0 {
		return models.NewError(models.KindUnauthorized, models.CodeInvalidCredential, "authentication required")
	}
	for _, role := range roles {
		if p.Role == role {
			return nil
		}
	}
	return models.ForbiddenError(models.CodeForbiddenRole, "role may not view this listing")
}

// Me returns the caller's own account, wallet included
func (s *QueryService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	if err := requireAnyRole(p, models.RoleDonor, models.RoleFundraiser, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repos.Users.GetByID(ctx, p.UserID)
}

// ListVerifiedCampaigns lists the campaigns open to donors
func (s *QueryService) ListVerifiedCampaigns(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error) {
	return s.repos.Campaigns.ListByStatus(ctx, models.StatusVerified, opts)
}

// GetCampaign returns a campaign. Unverified campaigns are only visible to
// their owner and to admins.
func (s *QueryService) GetCampaign(ctx context.Context, p models.Principal, id int64) (*models.Campaign, error) {
	campaign, err := s.repos.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.StatusVerified || p.Role == models.RoleAdmin || campaign.FundraiserID == p.UserID {
		return campaign, nil
	}
	return nil, models.NotFoundError("campaign")
}

// ListFundraiserCampaigns lists the caller's own campaigns in every status
func (s *QueryService) ListFundraiserCampaigns(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error) {
	if err := requireAnyRole(p, models.RoleFundraiser); err != nil {
		return nil, err
	}
	return s.repos.Campaigns.ListByFundraiser(ctx, p.UserID, opts)
}

// ListProposals lists campaigns awaiting admin review
func (s *QueryService) ListProposals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error) {
	if err := requireAnyRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repos.Campaigns.ListByStatus(ctx, models.StatusPending, opts)
}

// ListDonations lists the caller's donations
func (s *QueryService) ListDonations(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.DonationHistory, error) {
	if err := requireAnyRole(p, models.RoleDonor); err != nil {
		return nil, err
	}
	return s.repos.Donations.ListByUser(ctx, p.UserID, opts)
}

// ListTopUps lists pending top-ups for admins and a donor's own history otherwise
func (s *QueryService) ListTopUps(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	if err := requireAnyRole(p, models.RoleAdmin, models.RoleDonor); err != nil {
		return nil, err
	}
	if p.Role == models.RoleAdmin {
		return s.repos.TopUps.ListByStatus(ctx, models.StatusPending, opts)
	}
	return s.repos.TopUps.ListByUser(ctx, p.UserID, opts)
}

// ListWithdrawals lists pending withdrawals for admins and a fundraiser's own
// requests otherwise
func (s *QueryService) ListWithdrawals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	if err := requireAnyRole(p, models.RoleAdmin, models.RoleFundraiser); err != nil {
		return nil, err
	}
	if p.Role == models.RoleAdmin {
		return s.repos.Withdrawals.ListByStatus(ctx, models.StatusPending, opts)
	}
	return s.repos.Withdrawals.ListByUser(ctx, p.UserID, opts)
}

// ListPendingFundraisers lists fundraisers waiting for verification
func (s *QueryService) ListPendingFundraisers(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.PendingFundraiser, error) {
	if err := requireAnyRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repos.Users.ListPendingFundraisers(ctx, opts)
}

// ListAuditLog lists admin decisions, newest first
func (s *QueryService) ListAuditLog(ctx context.Context, p models.Principal, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error) {
	if err := requireAnyRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := models.ParseAuditTarget(targetType)
	if err != nil {
		return nil, err
	}
	return s.repos.Audit.List(ctx, target, opts)
}
