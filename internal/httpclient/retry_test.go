package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, BackoffFactor: 500 * time.Millisecond}

	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{retry: 0, expected: 0},
		{retry: 1, expected: 500 * time.Millisecond},
		{retry: 2, expected: time.Second},
		{retry: 3, expected: 2 * time.Second},
		{retry: 4, expected: 4 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.Delay(tt.retry), "retry %d", tt.retry)
	}
}

func TestRetryPolicy_DelayCapped(t *testing.T) {
	policy := RetryPolicy{BackoffFactor: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, 2*time.Second, policy.Delay(2))
	assert.Equal(t, 3*time.Second, policy.Delay(3))
	assert.Equal(t, 3*time.Second, policy.Delay(80))

	uncapped := RetryPolicy{BackoffFactor: time.Second}
	assert.Greater(t, uncapped.Delay(80), time.Duration(0))
}

func TestRetryPolicy_ShouldRetryStatus(t *testing.T) {
	policy := DefaultRetryPolicy()
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, policy.ShouldRetryStatus(code), "status %d", code)
	}
	for _, code := range []int{http.StatusOK, http.StatusNotFound, http.StatusForbidden, 501} {
		assert.False(t, policy.ShouldRetryStatus(code), "status %d", code)
	}
}

func TestRetryPolicy_MaxAttempts(t *testing.T) {
	assert.Equal(t, 4, DefaultRetryPolicy().MaxAttempts())
	assert.Equal(t, 1, RetryPolicy{MaxRetries: 0}.MaxAttempts())
	assert.Equal(t, 1, RetryPolicy{MaxRetries: -2}.MaxAttempts())
}

func TestWaitForRetry_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := waitForRetry(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
