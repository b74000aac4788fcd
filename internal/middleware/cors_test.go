package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	handler := CORS(DefaultCORSConfig("https://app.example.com", "*.partner.org"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin", http.MethodGet, "https://app.example.com", false, http.StatusOK, "https://app.example.com"},
		{"wildcard subdomain", http.MethodGet, "https://eu.partner.org", false, http.StatusOK, "https://eu.partner.org"},
		{"lookalike domain", http.MethodGet, "https://evilpartner.org", false, http.StatusOK, ""},
		{"unknown origin", http.MethodGet, "https://evil.com", false, http.StatusOK, ""},
		{"preflight", http.MethodOptions, "https://app.example.com", true, http.StatusNoContent, "https://app.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/donate", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}
