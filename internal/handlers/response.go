package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"crowdfund-ledger/internal/middleware"
	"crowdfund-ledger/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForKind maps a ledger error kind to its HTTP status
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindInsufficientFunds, models.KindExceedsTarget,
		models.KindExceedsAvailable, models.KindAlreadyVerified, models.KindAlreadyRejected:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err. Anything that is not a LedgerError is an
// infrastructure failure: the detail is logged and the caller gets a
// generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ledgerErr *models.LedgerError
	if errors.As(err, &ledgerErr) {
		writeJSON(w, statusForKind(ledgerErr.Kind), ErrorResponse{Error: ledgerErr.Message, Code: ledgerErr.Code})
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
}

// decodeJSON reads a JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.ValidationError(models.CodeInvalidInput, "request body is required")
		}
		return models.ValidationError(models.CodeInvalidInput, "request body is not valid JSON")
	}
	return nil
}

// principal returns the authenticated caller
func principal(r *http.Request) (models.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return models.Principal{}, models.NewError(models.KindUnauthorized, models.CodeInvalidCredential, "authentication required")
	}
	return p, nil
}

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (int64, error) {
	return models.ParseID(chi.URLParam(r, "id"))
}

// listOptions reads ?limit= and ?offset=
func listOptions(r *http.Request) models.ListOptions {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return models.ListOptions{Limit: limit, Offset: offset}.Normalize()
}

// flexibleID accepts an id sent either as a JSON string or a JSON number and
// keeps it as text, so malformed ids are reported by the engine.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
