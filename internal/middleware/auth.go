package middleware

import (
	"context"
	"net/http"
	"strings"

	"crowdfund-ledger/internal/models"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	requestIDContextKey contextKey = "request_id"
)

// PrincipalParser turns a bearer token into the caller's principal
type PrincipalParser interface {
	Parse(token string) (models.Principal, error)
}

// Authenticate requires a valid bearer token and stores the principal in the
// request context. The ledger engine still checks roles on every call.
func Authenticate(parser PrincipalParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, models.CodeInvalidCredential, "missing bearer token")
				return
			}

			principal, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, models.CodeInvalidCredential, "invalid or expired token")
				return
			}

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int64("user_id", principal.UserID).Str("role", string(principal.Role))
			})

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(models.Principal)
	return p, ok
}

// RequireRole rejects callers without one of roles. It must run after
// Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, models.CodeInvalidCredential, "authentication required")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, models.CodeForbiddenRole, "role not permitted")
		})
	}
}
