package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crowdfund-ledger/internal/models"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("user:1"), "attempt %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("user:1"), "4th attempt should be blocked")
	assert.True(t, rl.Allow("user:2"), "other keys are independent")
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, time.Minute)

	assert.True(t, rl.Allow("k"))
	*clock = clock.Add(30 * time.Second)
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	assert.Equal(t, 30*time.Second, rl.RetryAfter("k"))

	*clock = clock.Add(31 * time.Second)
	assert.Zero(t, rl.RetryAfter("k"))
	assert.True(t, rl.Allow("k"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	rl.Allow("a")
	*clock = clock.Add(2 * time.Minute)
	rl.Allow("b")
	rl.cleanup()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	assert.NotContains(t, rl.attempts, "a")
	assert.Contains(t, rl.attempts, "b")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	post := func(userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/donate", nil)
		if userID > 0 {
			req = req.WithContext(WithPrincipal(req.Context(), models.Principal{UserID: userID, Role: models.RoleDonor}))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusCreated, post(1).Code)
	blocked := post(1)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "61", blocked.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusCreated, post(2).Code, "limits are per principal")
	assert.Equal(t, http.StatusCreated, post(0).Code, "anonymous callers are keyed by address")

	// reads are never limited
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
		req = req.WithContext(WithPrincipal(req.Context(), models.Principal{UserID: 1, Role: models.RoleDonor}))
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
}
