package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recoverer turns a panic into a 500 JSON response and logs the stack
func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error().
					Str("request_id", RequestIDFromContext(r.Context())).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// NotFoundHandler answers unknown routes with a JSON 404
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not-found", "route not found")
	})
}

// MethodNotAllowedHandler answers known routes hit with the wrong method
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	})
}
