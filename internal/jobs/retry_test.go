package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	tests := []struct {
		attempts int
		retry    bool
		backoff  time.Duration
	}{
		{attempts: 1, retry: true, backoff: 5 * time.Second},
		{attempts: 2, retry: true, backoff: 10 * time.Second},
		{attempts: 3, retry: false, backoff: 20 * time.Second},
		{attempts: 4, retry: false, backoff: 40 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.retry, p.ShouldRetry(tt.attempts), "attempts=%d", tt.attempts)
		assert.Equal(t, tt.backoff, p.Backoff(tt.attempts), "attempts=%d", tt.attempts)
	}

	assert.Equal(t, 5*time.Second, p.Backoff(0))
	assert.Equal(t, 5*time.Second*(1<<20), p.Backoff(500))
}
