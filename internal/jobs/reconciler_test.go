package jobs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_Sweep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	orphan := h.submit(t, "u1", 5)
	stuck := h.submit(t, "u2", 5)

	// the orphan's job is lost; the stuck request was claimed by a worker that died
	lost := h.next(t)
	require.NoError(t, h.queue.Ack(ctx, lost))
	claimed := h.next(t)
	require.NoError(t, h.svc.Fortune.Transition(ctx, claimed.RequestID, domain.RequestPending, domain.RequestProcessing, nil))
	require.NotEqual(t, lost.RequestID, claimed.RequestID)
	if lost.RequestID != orphan.RequestID {
		orphan, stuck = stuck, orphan
	}

	r := jobs.NewReconciler(h.queue, h.repos.RequestRepo, h.svc.Fortune, 2*time.Minute, 10*time.Minute)

	// nothing is old enough yet
	report, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, jobs.SweepReport{}, report)

	h.clock.Advance(time.Hour)
	r.WithClock(func() time.Time { return time.Now().Add(time.Hour) })
	report, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RecoveredLeases)
	assert.Equal(t, 1, report.Reset)
	// the reset request already got a fresh job, so only the orphan counts
	assert.Equal(t, 1, report.Requeued)

	assert.Equal(t, domain.RequestPending, h.status(t, stuck.RequestID))
	assert.Equal(t, domain.RequestPending, h.status(t, orphan.RequestID))

	stats, err := h.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Waiting)
	assert.Zero(t, stats.InFlight)
}

func TestReconciler_SweepWalksWholeBacklog(t *testing.T) {
	jobs.SetReconcileBatch(t, 2)
	h := newHarness(t)
	ctx := context.Background()

	var submitted []string
	for i := 0; i < 5; i++ {
		req := h.submit(t, fmt.Sprintf("u%d", i), 5)
		submitted = append(submitted, req.RequestID)
	}
	// every job is lost before a worker touches the request
	for range submitted {
		lost := h.next(t)
		require.NoError(t, h.queue.Ack(ctx, lost))
	}

	r := jobs.NewReconciler(h.queue, h.repos.RequestRepo, h.svc.Fortune, 2*time.Minute, 10*time.Minute).
		WithClock(func() time.Time { return time.Now().Add(time.Hour) })

	report, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(submitted), report.Requeued)

	stats, err := h.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(submitted)), stats.Waiting)

	// jobs that are already waiting are not counted again
	report, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Requeued)
}
