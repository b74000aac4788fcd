package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by caller
type RateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter creates a limiter allowing maxAttempts per window and starts
// its cleanup goroutine. Call Stop to release it.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow records an attempt for key and reports whether it is within the limit.
// A rejected attempt is not recorded.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := pruneAttempts(rl.attempts[key], now.Add(-rl.window))
	if len(valid) >= rl.maxAttempts {
		rl.attempts[key] = valid
		return false
	}

	rl.attempts[key] = append(valid, now)
	return true
}

// RetryAfter returns how long until key may try again
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := pruneAttempts(rl.attempts[key], now.Add(-rl.window))
	if len(valid) < rl.maxAttempts {
		return 0
	}
	// the oldest attempt in the window frees the next slot
	return valid[0].Add(rl.window).Sub(now)
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes keys with no attempts left in the window
func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, attempts := range rl.attempts {
		valid := pruneAttempts(attempts, cutoff)
		if len(valid) == 0 {
			delete(rl.attempts, key)
		} else {
			rl.attempts[key] = valid
		}
	}
}

// pruneAttempts drops attempts at or before cutoff. Attempts are appended in
// time order, so the survivors are a suffix.
func pruneAttempts(attempts []time.Time, cutoff time.Time) []time.Time {
	for i, attempt := range attempts {
		if attempt.After(cutoff) {
			return attempts[i:]
		}
	}
	return nil
}

// RateLimit limits mutating requests. Authenticated callers are keyed by user
// id, anonymous ones by client address. Reads pass through.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIP(r)
			if p, ok := PrincipalFromContext(r.Context()); ok {
				key = "user:" + strconv.FormatInt(p.UserID, 10)
			}

			if !rl.Allow(key) {
				retry := rl.RetryAfter(key)
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				writeError(w, http.StatusTooManyRequests, "rate-limited", "too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
