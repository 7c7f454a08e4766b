package httpclient

import (
	"context"
	"math"
	"slices"
	"time"
)

// DefaultRetryStatusCodes are the statuses treated as transient.
var DefaultRetryStatusCodes = []int{429, 500, 502, 503, 504}

// RetryPolicy bounds the attempts made against one URL. It is passed by value into
// every fetch so concurrent hosts never share retry state.
type RetryPolicy struct {
	MaxRetries    int
	BackoffFactor time.Duration
	// MaxDelay caps a single backoff sleep; 0 means uncapped.
	MaxDelay         time.Duration
	RetryStatusCodes []int
}

// DefaultRetryPolicy returns 3 retries with a 500ms backoff factor.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       3,
		BackoffFactor:    500 * time.Millisecond,
		MaxDelay:         30 * time.Second,
		RetryStatusCodes: slices.Clone(DefaultRetryStatusCodes),
	}
}

// MaxAttempts is the initial attempt plus the retries.
func (p RetryPolicy) MaxAttempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Delay returns the sleep before retry n (n >= 1): BackoffFactor * 2^(n-1).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 || p.BackoffFactor <= 0 {
		return 0
	}

	delay := float64(p.BackoffFactor) * math.Pow(2, float64(retry-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// ShouldRetryStatus reports whether a response status warrants another attempt.
func (p RetryPolicy) ShouldRetryStatus(statusCode int) bool {
	return slices.Contains(p.RetryStatusCodes, statusCode)
}

// waitForRetry sleeps for d or until ctx is done.
func waitForRetry(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
