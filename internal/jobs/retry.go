package jobs

import "time"

// RetryPolicy decides whether a transiently failed job runs again and when.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the generation queue defaults: three attempts,
// exponential backoff from five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Second}
}

// ShouldRetry reports whether a job that has failed attempts times may run again.
func (p RetryPolicy) ShouldRetry(attempts int) bool {
	return attempts < p.MaxAttempts
}

// Backoff returns BaseDelay * 2^(attempts-1).
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	// cap the shift so a misconfigured attempt count cannot overflow
	shift := attempts - 1
	if shift > 20 {
		shift = 20
	}
	return p.BaseDelay * time.Duration(1<<shift)
}
