package handlers

import (
	"net/http"

	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/services"
)

// LedgerHandler serves the donor and fundraiser endpoints
type LedgerHandler struct {
	ledger  services.LedgerServiceInterface
	queries services.QueryServiceInterface
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger services.LedgerServiceInterface, queries services.QueryServiceInterface) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, queries: queries}
}

// Me returns the caller's account, including the wallet balance
func (h *LedgerHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.queries.Me(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListCampaigns lists campaigns open for donations
func (h *LedgerHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.queries.ListVerifiedCampaigns(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign returns one campaign the caller may see
func (h *LedgerHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	campaign, err := h.queries.GetCampaign(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Donate moves money from the caller's wallet into the campaign in the path
func (h *LedgerHandler) Donate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.DonationCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.CampaignID = campaignID

	donation, err := h.ledger.Donate(r.Context(), p, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

// ListDonations lists the caller's donations
func (h *LedgerHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	donations, err := h.queries.ListDonations(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// RequestTopUp records a PENDING wallet top-up
func (h *LedgerHandler) RequestTopUp(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.TopUpCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	topUp, err := h.ledger.RequestTopUp(r.Context(), p, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, topUp)
}

// ListTopUps lists the caller's top-ups, or every pending one for an admin
func (h *LedgerHandler) ListTopUps(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	topUps, err := h.queries.ListTopUps(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topUps)
}

// ListFundraiserCampaigns lists every campaign the caller owns
func (h *LedgerHandler) ListFundraiserCampaigns(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	campaigns, err := h.queries.ListFundraiserCampaigns(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// CreateCampaign submits a PENDING campaign proposal
func (h *LedgerHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.CampaignCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	campaign, err := h.ledger.CreateCampaign(r.Context(), p, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// RequestWithdrawal reserves part of a campaign's balance for payout
func (h *LedgerHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.WithdrawalCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.CampaignID = campaignID

	withdrawal, err := h.ledger.RequestWithdrawal(r.Context(), p, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawal)
}

// StopCampaign closes a verified campaign to new donations and withdrawals
func (h *LedgerHandler) StopCampaign(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	campaign, err := h.ledger.StopCampaign(r.Context(), p, campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// ListWithdrawals lists the caller's withdrawals, or every pending one for an admin
func (h *LedgerHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	withdrawals, err := h.queries.ListWithdrawals(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawals)
}
