package services

import (
	"context"
	"time"

	"crowdfund-ledger/internal/models"
)

// VerificationResult reports the record an admin decision settled
type VerificationResult struct {
	Kind       models.RecordKind         `json:"kind"`
	ID         int64                     `json:"id"`
	Status     models.VerificationStatus `json:"status"`
	VerifiedAt time.Time                 `json:"verified_at"`
}

// VerifyOrReject moves a PENDING top-up, withdrawal or campaign proposal to
// VERIFIED or REJECTED and applies the matching settlement in the same
// transaction. Input is fully validated before any record is read.
func (s *LedgerService) VerifyOrReject(ctx context.Context, p models.Principal, req models.VerifyRequest) (*VerificationResult, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	id, err := models.ParseID(req.ID)
	if err != nil {
		return nil, err
	}
	target, err := models.ParseTargetStatus(req.Status)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParseRecordKind(string(req.Kind))
	if err != nil {
		return nil, err
	}

	var settle func(ctx context.Context, repos *Repositories, id int64, target models.VerificationStatus, at time.Time) (map[string]int64, error)
	switch kind {
	case models.RecordTopUp:
		settle = s.settleTopUp
	case models.RecordWithdrawal:
		settle = s.settleWithdrawal
	case models.RecordCampaign:
		settle = s.settleCampaign
	}

	at := s.now().UTC()
	if err := s.tx.RunInTx(ctx, func(repos *Repositories) error {
		details, err := settle(ctx, repos, id, target, at)
		if err != nil {
			return err
		}
		_, err = repos.Audit.Create(ctx, &models.AuditEntry{
			AdminUserID: p.UserID,
			Action:      models.ActionForStatus(target),
			TargetType:  string(kind),
			TargetID:    id,
			Details:     details,
		})
		return err
	}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Int64("record_id", id).
		Str("status", string(target)).
		Int64("admin_id", p.UserID).
		Msg("record settled")
	return &VerificationResult{Kind: kind, ID: id, Status: target, VerifiedAt: at}, nil
}

// settleTopUp credits the requester's wallet on VERIFIED. REJECTED only
// closes the request. The returned details go to the audit log.
func (s *LedgerService) settleTopUp(ctx context.Context, repos *Repositories, id int64, target models.VerificationStatus, at time.Time) (map[string]int64, error) {
	topUp, err := repos.TopUps.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.CheckTransition(topUp.Status, target); err != nil {
		return nil, err
	}

	details := map[string]int64{"user_id": topUp.UserID, "amount": topUp.Amount}
	if target == models.StatusVerified {
		if _, err := repos.Users.GetForUpdate(ctx, topUp.UserID); err != nil {
			return nil, err
		}
		wallet, err := repos.Users.AdjustWallet(ctx, topUp.UserID, topUp.Amount)
		if err != nil {
			return nil, err
		}
		details["wallet_amount"] = wallet
	}

	return details, repos.TopUps.SetStatus(ctx, topUp.ID, target, at)
}

// settleWithdrawal releases the reservation. VERIFIED pays it out to the
// fundraiser's wallet; REJECTED returns it to the campaign's held amount.
func (s *LedgerService) settleWithdrawal(ctx context.Context, repos *Repositories, id int64, target models.VerificationStatus, at time.Time) (map[string]int64, error) {
	withdrawal, err := repos.Withdrawals.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.CheckTransition(withdrawal.Status, target); err != nil {
		return nil, err
	}

	if _, err := repos.Campaigns.GetForUpdate(ctx, withdrawal.CampaignID); err != nil {
		return nil, err
	}

	var campaign *models.Campaign
	switch target {
	case models.StatusVerified:
		if _, err := repos.Users.GetForUpdate(ctx, withdrawal.UserID); err != nil {
			return nil, err
		}
		if campaign, err = repos.Campaigns.AdjustBalances(ctx, withdrawal.CampaignID, 0, -withdrawal.Amount, 0); err != nil {
			return nil, err
		}
		if _, err := repos.Users.AdjustWallet(ctx, withdrawal.UserID, withdrawal.Amount); err != nil {
			return nil, err
		}
	case models.StatusRejected:
		if campaign, err = repos.Campaigns.AdjustBalances(ctx, withdrawal.CampaignID, withdrawal.Amount, -withdrawal.Amount, 0); err != nil {
			return nil, err
		}
	}

	details := map[string]int64{
		"user_id":         withdrawal.UserID,
		"campaign_id":     withdrawal.CampaignID,
		"amount":          withdrawal.Amount,
		"campaign_amount": campaign.Amount,
	}
	return details, repos.Withdrawals.SetStatus(ctx, withdrawal.ID, target, at)
}

// settleCampaign has no balance effect; VERIFIED opens the campaign to donors
func (s *LedgerService) settleCampaign(ctx context.Context, repos *Repositories, id int64, target models.VerificationStatus, at time.Time) (map[string]int64, error) {
	campaign, err := repos.Campaigns.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.CheckTransition(campaign.Status, target); err != nil {
		return nil, err
	}

	details := map[string]int64{"fundraiser_id": campaign.FundraiserID, "target_amount": campaign.TargetAmount}
	return details, repos.Campaigns.SetStatus(ctx, campaign.ID, models.StatusPending, target, &at)
}
