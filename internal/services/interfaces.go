package services

import (
	"context"
	"time"

	"crowdfund-ledger/internal/models"
)

// UserRepositoryInterface defines user and wallet storage
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)
	AdjustWallet(ctx context.Context, id int64, delta int64) (int64, error)
	MarkVerified(ctx context.Context, id int64) error
	ListPendingFundraisers(ctx context.Context, opts models.ListOptions) ([]*models.PendingFundraiser, error)
}

// CampaignRepositoryInterface defines campaign and held-balance storage
type CampaignRepositoryInterface interface {
	Create(ctx context.Context, fundraiserID int64, req *models.CampaignCreateRequest) (*models.Campaign, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Campaign, error)
	AdjustBalances(ctx context.Context, id int64, amountDelta, withdrawDelta, donatedDelta int64) (*models.Campaign, error)
	SetStatus(ctx context.Context, id int64, from, to models.VerificationStatus, verifiedAt *time.Time) error
	ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.Campaign, error)
	ListByFundraiser(ctx context.Context, fundraiserID int64, opts models.ListOptions) ([]*models.Campaign, error)
}

// DonationRepositoryInterface defines the append-only donation history
type DonationRepositoryInterface interface {
	Create(ctx context.Context, userID, campaignID, amount int64) (*models.DonationHistory, error)
	ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.DonationHistory, error)
}

// TopUpRepositoryInterface defines top-up request storage
type TopUpRepositoryInterface interface {
	Create(ctx context.Context, userID int64, req *models.TopUpCreateRequest) (*models.TopUpHistory, error)
	GetForUpdate(ctx context.Context, id int64) (*models.TopUpHistory, error)
	SetStatus(ctx context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error
	ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.TopUpHistory, error)
	ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.TopUpHistory, error)
}

// WithdrawalRepositoryInterface defines withdrawal request storage
type WithdrawalRepositoryInterface interface {
	Create(ctx context.Context, userID, campaignID, amount int64) (*models.WithdrawRequest, error)
	GetForUpdate(ctx context.Context, id int64) (*models.WithdrawRequest, error)
	SetStatus(ctx context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error
	ListByStatus(ctx context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.WithdrawRequest, error)
	ListByUser(ctx context.Context, userID int64, opts models.ListOptions) ([]*models.WithdrawRequest, error)
}

// ProposalRepositoryInterface defines fundraiser proposal storage
type ProposalRepositoryInterface interface {
	Create(ctx context.Context, userID int64, text string) (*models.FundraiserProposal, error)
	GetByUserID(ctx context.Context, userID int64) (*models.FundraiserProposal, error)
}

// AuditLogRepositoryInterface defines the append-only admin audit log
type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error)
	List(ctx context.Context, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error)
}

// Repositories bundles every store bound to one connection or transaction
type Repositories struct {
	Users       UserRepositoryInterface
	Campaigns   CampaignRepositoryInterface
	Donations   DonationRepositoryInterface
	TopUps      TopUpRepositoryInterface
	Withdrawals WithdrawalRepositoryInterface
	Proposals   ProposalRepositoryInterface
	Audit       AuditLogRepositoryInterface
}

// TxRunner runs fn with repositories bound to a single transaction. The
// transaction commits only if fn returns nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos *Repositories) error) error
}

// Credentials hashes new passwords and checks presented ones
type Credentials interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// LedgerServiceInterface is the mutating engine consumed by the transport
type LedgerServiceInterface interface {
	Donate(ctx context.Context, p models.Principal, req *models.DonationCreateRequest) (*models.DonationHistory, error)
	RequestTopUp(ctx context.Context, p models.Principal, req *models.TopUpCreateRequest) (*models.TopUpHistory, error)
	RequestWithdrawal(ctx context.Context, p models.Principal, req *models.WithdrawalCreateRequest) (*models.WithdrawRequest, error)
	VerifyOrReject(ctx context.Context, p models.Principal, req models.VerifyRequest) (*VerificationResult, error)
	VerifyFundraiser(ctx context.Context, p models.Principal, rawUserID string) (*models.User, error)
	CreateCampaign(ctx context.Context, p models.Principal, req *models.CampaignCreateRequest) (*models.Campaign, error)
	StopCampaign(ctx context.Context, p models.Principal, campaignID int64) (*models.Campaign, error)
}

// AccountServiceInterface registers and authenticates users
type AccountServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// QueryServiceInterface exposes the read-only listings
type QueryServiceInterface interface {
	Me(ctx context.Context, p models.Principal) (*models.User, error)
	ListVerifiedCampaigns(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error)
	GetCampaign(ctx context.Context, p models.Principal, id int64) (*models.Campaign, error)
	ListFundraiserCampaigns(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error)
	ListProposals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error)
	ListDonations(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.DonationHistory, error)
	ListTopUps(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.TopUpHistory, error)
	ListWithdrawals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.WithdrawRequest, error)
	ListPendingFundraisers(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.PendingFundraiser, error)
	ListAuditLog(ctx context.Context, p models.Principal, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error)
}
