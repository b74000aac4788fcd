package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestID propagates or generates an X-Request-ID
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id set by RequestID
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDContextKey).(string); ok {
		return v
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Logger logs one structured line per request. The line is written through
// the logger stored in the context, so fields added downstream with
// UpdateContext (Authenticate adds user_id and role) appear on it.
func Logger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			ctx := logger.With().
				Str("request_id", RequestIDFromContext(r.Context())).
				Logger().
				WithContext(r.Context())
			reqLogger := zerolog.Ctx(ctx)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			event := reqLogger.Info()
			switch {
			case wrapped.statusCode >= 500:
				event = reqLogger.Error()
			case wrapped.statusCode >= 400:
				event = reqLogger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Int("bytes", wrapped.size).
				Dur("duration", time.Since(start)).
				Str("remote_ip", clientIP(r)).
				Msg("http request")
		})
	}
}

// clientIP gets the client address. chi's RealIP middleware has already
// rewritten RemoteAddr from trusted proxy headers.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
