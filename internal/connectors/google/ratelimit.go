package google

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit stays below Drive's 10 requests/second/user quota.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 8.0, BurstSize: 10}

// defaultBackoff applies when a 429 response carries no Retry-After header.
const defaultBackoff = 30 * time.Second

// RateLimiter provides rate limiting for Google API requests.
// It uses a token bucket with a shared backoff window after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter. Non-positive values use DefaultRateLimit.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimit.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultRateLimit.BurstSize
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window. A non-positive duration
// uses the default backoff.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if until := r.now().Add(retryAfter); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// Do waits for the limiter, runs call and records a backoff if the
// call was rate limited. The call's error is returned mapped by WrapError.
func (r *RateLimiter) Do(ctx context.Context, call func() error) error {
	if err := r.Wait(ctx); err != nil {
		return err
	}

	err := call()
	if err == nil {
		return nil
	}
	if IsRateLimited(err) {
		r.RecordRateLimitError(retryAfter(err))
	}
	return WrapError(err)
}

// retryAfter reads the Retry-After header (in seconds) from a googleapi.Error.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// isRateLimitStatus reports whether a 403 carries a rate limit reason.
func isRateLimitStatus(gerr *googleapi.Error) bool {
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
