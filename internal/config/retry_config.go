package config

import "slices"

// RetryConfig defines the per-URL retry budget and backoff
type RetryConfig struct {
	// Retries after the first attempt; 0 disables retrying
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"min=0,max=20"`
	// Delay before retry n is BackoffFactor * 2^(n-1)
	BackoffFactor Duration `json:"backoff_factor,omitempty" yaml:"backoff_factor,omitempty" validate:"min=0"`
	// Cap on a single delay; 0 means uncapped
	MaxDelay         Duration `json:"max_delay,omitempty" yaml:"max_delay,omitempty" validate:"min=0"`
	RetryStatusCodes []int    `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"statuscodes"`
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       DefaultRetryMaxRetries,
		BackoffFactor:    MustParseDuration(DefaultRetryBackoffFactor),
		MaxDelay:         MustParseDuration(DefaultRetryMaxDelay),
		RetryStatusCodes: slices.Clone(DefaultRetryStatusCodes),
	}
}
