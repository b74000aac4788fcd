package handlers

import (
	"net/http"

	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/services"
)

// AdminHandler serves the admin review queues
type AdminHandler struct {
	ledger  services.LedgerServiceInterface
	queries services.QueryServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ledger services.LedgerServiceInterface, queries services.QueryServiceInterface) *AdminHandler {
	return &AdminHandler{ledger: ledger, queries: queries}
}

// VerifyBody is the admin decision on one record
type VerifyBody struct {
	ID     flexibleID `json:"id"`
	Status string     `json:"status"`
}

// VerifyRecord returns a handler that verifies or rejects a record of kind
func (h *AdminHandler) VerifyRecord(kind models.RecordKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := principal(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var body VerifyBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		result, err := h.ledger.VerifyOrReject(r.Context(), p, models.VerifyRequest{
			Kind:   kind,
			ID:     string(body.ID),
			Status: body.Status,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ListProposals lists campaign proposals awaiting review
func (h *AdminHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	campaigns, err := h.queries.ListProposals(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// ListPendingFundraisers lists unverified fundraisers with their proposals
func (h *AdminHandler) ListPendingFundraisers(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fundraisers, err := h.queries.ListPendingFundraisers(r.Context(), p, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fundraisers)
}

// FundraiserBody names the fundraiser an admin verifies
type FundraiserBody struct {
	ID flexibleID `json:"id"`
}

// VerifyFundraiser marks a fundraiser account as verified
func (h *AdminHandler) VerifyFundraiser(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body FundraiserBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.ledger.VerifyFundraiser(r.Context(), p, string(body.ID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListAuditLog lists admin decisions, optionally for one ?target_type=
func (h *AdminHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.queries.ListAuditLog(r.Context(), p, r.URL.Query().Get("target_type"), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
