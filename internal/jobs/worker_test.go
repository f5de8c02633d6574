package jobs_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	queue   jobs.Queue
	mu      sync.Mutex
	seen    map[string]int
	running atomic.Int32
	peak    atomic.Int32
}

func (h *countingHandler) Process(ctx context.Context, job domain.Job) error {
	n := h.running.Add(1)
	defer h.running.Add(-1)
	for {
		p := h.peak.Load()
		if n <= p || h.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	h.mu.Lock()
	h.seen[job.RequestID]++
	h.mu.Unlock()
	return h.queue.Ack(ctx, job)
}

func (h *countingHandler) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.seen {
		n += c
	}
	return n
}

func TestWorkerPool_ProcessesAllJobsAndDrains(t *testing.T) {
	q := jobs.NewMemoryQueue(time.Minute)
	handler := &countingHandler{queue: q, seen: map[string]int{}}
	pool := jobs.NewWorkerPool(jobs.PoolConfig{Concurrency: 2, PollInterval: 5 * time.Millisecond}, q, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	for _, id := range []string{"r1", "r2", "r3", "r4", "r5", "r6"} {
		_, err := q.Enqueue(context.Background(), id)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return handler.total() == 6 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}

	assert.LessOrEqual(t, handler.peak.Load(), int32(2))
	stats := pool.Stats()
	assert.Equal(t, int64(6), stats.Completed)
	assert.Zero(t, stats.Active)
	for id, n := range handler.seen {
		assert.Equal(t, 1, n, "request %s", id)
	}
}

func TestWorkerPool_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.gen.On("Generate", mock.Anything, mock.Anything).Return("reading", nil)
	req := h.submit(t, "u1", 5)

	pool := jobs.NewWorkerPool(jobs.PoolConfig{Concurrency: 1, PollInterval: 5 * time.Millisecond}, h.queue, h.processor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = pool.Run(ctx) }()

	require.Eventually(t, func() bool {
		return h.status(t, req.RequestID) == domain.RequestAIGenerated
	}, 2*time.Second, 5*time.Millisecond)
}
