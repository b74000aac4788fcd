package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"crowdfund-ledger/internal/models"
)

// memStore is an in-memory ledger database. RunInTx holds one mutex for the
// whole unit of work and restores a snapshot when fn fails, so tests observe
// the same all-or-nothing behaviour the PostgreSQL runner gives.
type memStore struct {
	mu sync.Mutex

	state memState
	// locks records GetForUpdate calls of the last transaction, in order
	locks []string
	// failOn makes the named operation fail once, to exercise rollback
	failOn string
	txs    int
}

type memState struct {
	nextID      int64
	users       map[int64]models.User
	campaigns   map[int64]models.Campaign
	donations   []models.DonationHistory
	topUps      map[int64]models.TopUpHistory
	withdrawals map[int64]models.WithdrawRequest
	proposals   map[int64]models.FundraiserProposal
	audit       []models.AuditEntry
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		users:       map[int64]models.User{},
		campaigns:   map[int64]models.Campaign{},
		topUps:      map[int64]models.TopUpHistory{},
		withdrawals: map[int64]models.WithdrawRequest{},
		proposals:   map[int64]models.FundraiserProposal{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		nextID:      s.nextID,
		users:       make(map[int64]models.User, len(s.users)),
		campaigns:   make(map[int64]models.Campaign, len(s.campaigns)),
		donations:   append([]models.DonationHistory(nil), s.donations...),
		topUps:      make(map[int64]models.TopUpHistory, len(s.topUps)),
		withdrawals: make(map[int64]models.WithdrawRequest, len(s.withdrawals)),
		proposals:   make(map[int64]models.FundraiserProposal, len(s.proposals)),
		audit:       append([]models.AuditEntry(nil), s.audit...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range s.topUps {
		c.topUps[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	return c
}

func (s *memStore) RunInTx(ctx context.Context, fn func(repos *Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs++
	s.locks = nil
	snapshot := s.state.clone()
	if err := fn(s.repos()); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// repos returns repositories that assume the caller holds s.mu
func (s *memStore) repos() *Repositories {
	return &Repositories{
		Users:       &memUsers{s},
		Campaigns:   &memCampaigns{s},
		Donations:   &memDonations{s},
		TopUps:      &memTopUps{s},
		Withdrawals: &memWithdrawals{s},
		Proposals:   &memProposals{s},
		Audit:       &memAudit{s},
	}
}

// snapshot returns a copy of the committed state for assertions
func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *memStore) id() int64 {
	s.state.nextID++
	return s.state.nextID
}

func (s *memStore) fail(op string) error {
	if s.failOn == op {
		s.failOn = ""
		return errInjected
	}
	return nil
}

var errInjected = &injectedError{}

type injectedError struct{}

func (*injectedError) Error() string { return "injected storage failure" }

// Seeding helpers; they write committed state directly.

func (s *memStore) addUser(role models.UserRole, wallet int64, verified bool, hash string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	u := models.User{ID: id, Email: fmt.Sprintf("user%d@example.com", id), PasswordHash: hash, FirstName: "Test", Role: role, Verified: verified, WalletAmount: wallet}
	s.state.users[u.ID] = u
	return u
}

func (s *memStore) addCampaign(owner int64, status models.VerificationStatus, target, amount int64) models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Campaign{ID: s.id(), FundraiserID: owner, Title: "Campaign", TargetAmount: target, Amount: amount, DonatedAmount: amount, Status: status}
	s.state.campaigns[c.ID] = c
	return c
}

func (s *memStore) addTopUp(userID, amount int64, status models.VerificationStatus) models.TopUpHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.TopUpHistory{ID: s.id(), UserID: userID, Amount: amount, BankName: "BCA", BankAccount: "A", BankAccountNumber: "1", Status: status}
	s.state.topUps[t.ID] = t
	return t
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	if err := r.s.fail("users.create"); err != nil {
		return nil, err
	}
	for _, u := range r.s.state.users {
		if u.Email == user.Email {
			return nil, models.ConflictError(models.CodeDuplicateEmail, "user already exists")
		}
	}
	u := *user
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.state.users[u.ID] = u
	return &u, nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, models.NotFoundError("user")
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.NotFoundError("user")
}

func (r *memUsers) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	r.s.locks = append(r.s.locks, "user")
	return r.GetByID(ctx, id)
}

func (r *memUsers) AdjustWallet(_ context.Context, id int64, delta int64) (int64, error) {
	if err := r.s.fail("users.adjust"); err != nil {
		return 0, err
	}
	u, ok := r.s.state.users[id]
	if ok && overflows(u.WalletAmount, delta) {
		return 0, models.ValidationError(models.CodeInvalidAmount, "wallet balance would overflow")
	}
	if !ok || u.WalletAmount+delta < 0 {
		return 0, models.InsufficientFundsError("wallet balance is too low")
	}
	u.WalletAmount += delta
	r.s.state.users[id] = u
	return u.WalletAmount, nil
}

func (r *memUsers) MarkVerified(_ context.Context, id int64) error {
	u, ok := r.s.state.users[id]
	if !ok || u.Role != models.RoleFundraiser || u.Verified {
		return models.NewError(models.KindAlreadyVerified, models.CodeVerified, "already verified")
	}
	u.Verified = true
	r.s.state.users[id] = u
	return nil
}

func (r *memUsers) ListPendingFundraisers(_ context.Context, opts models.ListOptions) ([]*models.PendingFundraiser, error) {
	var out []*models.PendingFundraiser
	for _, u := range r.s.state.users {
		if u.Role == models.RoleFundraiser && !u.Verified {
			u := u
			out = append(out, &models.PendingFundraiser{User: &u, ProposalText: r.s.state.proposals[u.ID].Text})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	return page(out, opts), nil
}

type memCampaigns struct{ s *memStore }

func (r *memCampaigns) Create(_ context.Context, fundraiserID int64, req *models.CampaignCreateRequest) (*models.Campaign, error) {
	c := models.Campaign{ID: r.s.id(), FundraiserID: fundraiserID, Title: req.Title, Description: req.Description, ImageURL: req.ImageURL, TargetAmount: req.TargetAmount, Status: models.StatusPending, CreatedAt: time.Now()}
	r.s.state.campaigns[c.ID] = c
	return &c, nil
}

func (r *memCampaigns) GetByID(_ context.Context, id int64) (*models.Campaign, error) {
	c, ok := r.s.state.campaigns[id]
	if !ok {
		return nil, models.NotFoundError("campaign")
	}
	return &c, nil
}

func (r *memCampaigns) GetForUpdate(ctx context.Context, id int64) (*models.Campaign, error) {
	r.s.locks = append(r.s.locks, "campaign")
	return r.GetByID(ctx, id)
}

func (r *memCampaigns) AdjustBalances(_ context.Context, id int64, amountDelta, withdrawDelta, donatedDelta int64) (*models.Campaign, error) {
	if err := r.s.fail("campaigns.adjust"); err != nil {
		return nil, err
	}
	c, ok := r.s.state.campaigns[id]
	if !ok {
		return nil, models.InsufficientFundsError("campaign balance is too low")
	}
	if overflows(c.Amount, amountDelta) || overflows(c.WithdrawAmount, withdrawDelta) || overflows(c.DonatedAmount, donatedDelta) {
		return nil, models.ValidationError(models.CodeInvalidAmount, "campaign balance would overflow")
	}
	c.Amount += amountDelta
	c.WithdrawAmount += withdrawDelta
	c.DonatedAmount += donatedDelta
	if c.Amount < 0 || c.WithdrawAmount < 0 || c.DonatedAmount < 0 || c.Amount+c.WithdrawAmount > c.DonatedAmount {
		return nil, models.InsufficientFundsError("campaign balance is too low")
	}
	r.s.state.campaigns[id] = c
	return &c, nil
}

func (r *memCampaigns) SetStatus(_ context.Context, id int64, from, to models.VerificationStatus, verifiedAt *time.Time) error {
	c, ok := r.s.state.campaigns[id]
	if !ok || c.Status != from {
		return models.ConflictError(models.CodeInvalidStatus, "campaign status changed concurrently")
	}
	c.Status = to
	if verifiedAt != nil {
		c.VerifiedAt = verifiedAt
	}
	r.s.state.campaigns[id] = c
	return nil
}

func (r *memCampaigns) ListByStatus(_ context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.Campaign, error) {
	return r.filter(opts, func(c models.Campaign) bool { return c.Status == status }), nil
}

func (r *memCampaigns) ListByFundraiser(_ context.Context, fundraiserID int64, opts models.ListOptions) ([]*models.Campaign, error) {
	return r.filter(opts, func(c models.Campaign) bool { return c.FundraiserID == fundraiserID }), nil
}

func (r *memCampaigns) filter(opts models.ListOptions, keep func(models.Campaign) bool) []*models.Campaign {
	var out []*models.Campaign
	for _, c := range r.s.state.campaigns {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, opts)
}

type memDonations struct{ s *memStore }

func (r *memDonations) Create(_ context.Context, userID, campaignID, amount int64) (*models.DonationHistory, error) {
	if err := r.s.fail("donations.create"); err != nil {
		return nil, err
	}
	d := models.DonationHistory{ID: r.s.id(), UserID: userID, CampaignID: campaignID, Amount: amount, CreatedAt: time.Now()}
	r.s.state.donations = append(r.s.state.donations, d)
	return &d, nil
}

func (r *memDonations) ListByUser(_ context.Context, userID int64, opts models.ListOptions) ([]*models.DonationHistory, error) {
	var out []*models.DonationHistory
	for i := len(r.s.state.donations) - 1; i >= 0; i-- {
		if d := r.s.state.donations[i]; d.UserID == userID {
			out = append(out, &d)
		}
	}
	return page(out, opts), nil
}

type memTopUps struct{ s *memStore }

func (r *memTopUps) Create(_ context.Context, userID int64, req *models.TopUpCreateRequest) (*models.TopUpHistory, error) {
	t := models.TopUpHistory{ID: r.s.id(), UserID: userID, Amount: req.Amount, BankName: req.BankName, BankAccount: req.BankAccount, BankAccountNumber: req.BankAccountNumber, Status: models.StatusPending, RequestedAt: time.Now()}
	r.s.state.topUps[t.ID] = t
	return &t, nil
}

func (r *memTopUps) GetForUpdate(_ context.Context, id int64) (*models.TopUpHistory, error) {
	r.s.locks = append(r.s.locks, "topup")
	t, ok := r.s.state.topUps[id]
	if !ok {
		return nil, models.NotFoundError("top-up")
	}
	return &t, nil
}

func (r *memTopUps) SetStatus(_ context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error {
	if err := r.s.fail("topups.status"); err != nil {
		return err
	}
	t, ok := r.s.state.topUps[id]
	if !ok || t.Status != models.StatusPending {
		return models.ConflictError(models.CodeInvalidStatus, "top-up is no longer pending")
	}
	t.Status = status
	t.VerifiedAt = &verifiedAt
	r.s.state.topUps[id] = t
	return nil
}

func (r *memTopUps) ListByStatus(_ context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	return r.filter(opts, func(t models.TopUpHistory) bool { return t.Status == status }), nil
}

func (r *memTopUps) ListByUser(_ context.Context, userID int64, opts models.ListOptions) ([]*models.TopUpHistory, error) {
	return r.filter(opts, func(t models.TopUpHistory) bool { return t.UserID == userID }), nil
}

func (r *memTopUps) filter(opts models.ListOptions, keep func(models.TopUpHistory) bool) []*models.TopUpHistory {
	var out []*models.TopUpHistory
	for _, t := range r.s.state.topUps {
		if keep(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, opts)
}

type memWithdrawals struct{ s *memStore }

func (r *memWithdrawals) Create(_ context.Context, userID, campaignID, amount int64) (*models.WithdrawRequest, error) {
	if err := r.s.fail("withdrawals.create"); err != nil {
		return nil, err
	}
	w := models.WithdrawRequest{ID: r.s.id(), UserID: userID, CampaignID: campaignID, Amount: amount, Status: models.StatusPending, RequestedAt: time.Now()}
	r.s.state.withdrawals[w.ID] = w
	return &w, nil
}

func (r *memWithdrawals) GetForUpdate(_ context.Context, id int64) (*models.WithdrawRequest, error) {
	r.s.locks = append(r.s.locks, "withdrawal")
	w, ok := r.s.state.withdrawals[id]
	if !ok {
		return nil, models.NotFoundError("withdrawal")
	}
	return &w, nil
}

func (r *memWithdrawals) SetStatus(_ context.Context, id int64, status models.VerificationStatus, verifiedAt time.Time) error {
	if err := r.s.fail("withdrawals.status"); err != nil {
		return err
	}
	w, ok := r.s.state.withdrawals[id]
	if !ok || w.Status != models.StatusPending {
		return models.ConflictError(models.CodeInvalidStatus, "withdrawal is no longer pending")
	}
	w.Status = status
	w.VerifiedAt = &verifiedAt
	r.s.state.withdrawals[id] = w
	return nil
}

func (r *memWithdrawals) ListByStatus(_ context.Context, status models.VerificationStatus, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	return r.filter(opts, func(w models.WithdrawRequest) bool { return w.Status == status }), nil
}

func (r *memWithdrawals) ListByUser(_ context.Context, userID int64, opts models.ListOptions) ([]*models.WithdrawRequest, error) {
	return r.filter(opts, func(w models.WithdrawRequest) bool { return w.UserID == userID }), nil
}

func (r *memWithdrawals) filter(opts models.ListOptions, keep func(models.WithdrawRequest) bool) []*models.WithdrawRequest {
	var out []*models.WithdrawRequest
	for _, w := range r.s.state.withdrawals {
		if keep(w) {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, opts)
}

type memProposals struct{ s *memStore }

func (r *memProposals) Create(_ context.Context, userID int64, text string) (*models.FundraiserProposal, error) {
	if err := r.s.fail("proposals.create"); err != nil {
		return nil, err
	}
	p := models.FundraiserProposal{ID: r.s.id(), UserID: userID, Text: text}
	r.s.state.proposals[userID] = p
	return &p, nil
}

func (r *memProposals) GetByUserID(_ context.Context, userID int64) (*models.FundraiserProposal, error) {
	p, ok := r.s.state.proposals[userID]
	if !ok {
		return nil, models.NotFoundError("proposal")
	}
	return &p, nil
}

type memAudit struct{ s *memStore }

func (r *memAudit) Create(_ context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	if err := r.s.fail("audit.create"); err != nil {
		return nil, err
	}
	e := *entry
	e.ID = r.s.id()
	e.CreatedAt = time.Now()
	r.s.state.audit = append(r.s.state.audit, e)
	return &e, nil
}

func (r *memAudit) List(_ context.Context, targetType string, opts models.ListOptions) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for i := len(r.s.state.audit) - 1; i >= 0; i-- {
		e := r.s.state.audit[i]
		if targetType == "" || e.TargetType == targetType {
			out = append(out, &e)
		}
	}
	return page(out, opts), nil
}

func page[T any](items []T, opts models.ListOptions) []T {
	opts = opts.Normalize()
	if opts.Offset >= len(items) {
		return []T{}
	}
	end := opts.Offset + opts.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[opts.Offset:end]
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// overflows mirrors PostgreSQL's BIGINT range check on balance + delta
func overflows(balance, delta int64) bool {
	if delta > 0 {
		return balance > math.MaxInt64-delta
	}
	return balance < math.MinInt64-delta
}
