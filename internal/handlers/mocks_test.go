package handlers

import (
	"context"

	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Donate(ctx context.Context, p models.Principal, req *models.DonationCreateRequest) (*models.DonationHistory, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DonationHistory), args.Error(1)
}

func (m *MockLedgerService) RequestTopUp(ctx context.Context, p models.Principal, req *models.TopUpCreateRequest) (*models.TopUpHistory, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopUpHistory), args.Error(1)
}

func (m *MockLedgerService) RequestWithdrawal(ctx context.Context, p models.Principal, req *models.WithdrawalCreateRequest) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

func (m *MockLedgerService) VerifyOrReject(ctx context.Context, p models.Principal, req models.VerifyRequest) (*services.VerificationResult, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerificationResult), args.Error(1)
}

func (m *MockLedgerService) VerifyFundraiser(ctx context.Context, p models.Principal, rawUserID string) (*models.User, error) {
	args := m.Called(ctx, p, rawUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockLedgerService) CreateCampaign(ctx context.Context, p models.Principal, req *models.CampaignCreateRequest) (*models.Campaign, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockLedgerService) StopCampaign(ctx context.Context, p models.Principal, campaignID int64) (*models.Campaign, error) {
	args := m.Called(ctx, p, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockQueryService) ListVerifiedCampaigns(ctx context.Context, opts models.ListOptions) ([]*models.Campaign, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockQueryService) GetCampaign(ctx context.Context, p models.Principal, id int64) (*models.Campaign, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockQueryService) ListFundraiserCampaigns(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockQueryService) ListProposals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.Campaign, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockQueryService) ListDonations(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.DonationHistory, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DonationHistory), args.Error(1)
}

func (m *MockQueryService) ListTopUps(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TopUpHistory), args.Error(1)
}

func (m *MockQueryService) ListWithdrawals(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawRequest), args.Error(1)
}

func (m *MockQueryService) ListPendingFundraisers(ctx context.Context, p models.Principal, opts models.ListOptions) ([]*models.PendingFundraiser, error) {
	args := m.Called(ctx, p, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingFundraiser), args.Error(1)
}

func (m *MockQueryService) ListAuditLog(ctx context.Context, p models.Principal, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, p, targetType, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}
