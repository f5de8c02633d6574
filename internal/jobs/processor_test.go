package jobs_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/jobs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProcess_Success(t *testing.T) {
	notifier := new(MockNotifier)
	reg := prometheus.NewRegistry()
	metrics := jobs.NewMetrics(reg)
	h := newHarness(t, jobs.WithNotifier(notifier), jobs.WithMetrics(metrics))
	ctx := context.Background()

	req := h.submit(t, "u1", 5)
	assert.Equal(t, int64(3), h.balance(t, "u1"))

	h.gen.On("Generate", mock.Anything, mock.Anything).Return("the cards say yes", nil).Once()
	notifier.On("ResultGenerated", mock.Anything, mock.MatchedBy(func(r domain.GenerationResult) bool {
		return r.RequestID == req.RequestID && r.Status == domain.ResultPendingReview
	})).Return(errors.New("mail down")).Once()

	require.NoError(t, h.processor.Process(ctx, h.next(t)))

	assert.Equal(t, domain.RequestAIGenerated, h.status(t, req.RequestID))
	result, err := h.repos.ResultRepo.FindResultByRequestID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "the cards say yes", result.RawText)
	assert.Equal(t, domain.ResultPendingReview, result.Status)

	stats, _ := h.queue.Stats(ctx)
	assert.Equal(t, domain.QueueStats{}, stats)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobsProcessed.WithLabelValues(jobs.OutcomeSucceeded)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
	h.gen.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestProcess_DuplicateDelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := h.submit(t, "u1", 5)

	h.gen.On("Generate", mock.Anything, mock.Anything).Return("one reading", nil).Once()

	job := h.next(t)
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.processor.Process(ctx, job)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	// a late redelivery after completion is also a no-op
	require.NoError(t, h.processor.Process(ctx, job))

	h.gen.AssertNumberOfCalls(t, "Generate", 1)
	assert.Equal(t, domain.RequestAIGenerated, h.status(t, req.RequestID))
	_, total, err := h.repos.ResultRepo.ListResults(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func runAttempts(t *testing.T, h *harness, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		h.clock.Advance(time.Hour)
		require.NoError(t, h.processor.Process(context.Background(), h.next(t)))
	}
}

func TestProcess_TransientFailuresExhaustRetries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := h.submit(t, "u1", 5)

	h.gen.On("Generate", mock.Anything, mock.Anything).Return("", fmt.Errorf("%w: status 503", apperrors.ErrTransient))

	runAttempts(t, h, 1)
	assert.Equal(t, domain.RequestPending, h.status(t, req.RequestID))
	_, err := h.queue.Dequeue(ctx)
	assert.ErrorIs(t, err, jobs.ErrEmpty, "retry waits for its backoff")

	runAttempts(t, h, 2)
	assert.Equal(t, domain.RequestFailed, h.status(t, req.RequestID))
	assert.Equal(t, int64(3), h.balance(t, "u1"), "no refund by default")

	dead, err := h.queue.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 3, dead[0].Attempts)
	assert.Contains(t, dead[0].LastError, "503")
	h.gen.AssertNumberOfCalls(t, "Generate", 3)
}

func TestProcess_RefundOnFailure(t *testing.T) {
	h := newHarness(t, jobs.WithRefundOnFailure(true))
	ctx := context.Background()
	req := h.submit(t, "u1", 5)

	h.gen.On("Generate", mock.Anything, mock.Anything).Return("", fmt.Errorf("%w: status 429", apperrors.ErrTransient))
	runAttempts(t, h, 3)

	assert.Equal(t, domain.RequestFailed, h.status(t, req.RequestID))
	assert.Equal(t, int64(5), h.balance(t, "u1"))

	entries, _, err := h.svc.Ledger.History(ctx, "u1", 10, "")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.EntryRefund, entries[0].Kind)
	assert.Equal(t, int64(2), entries[0].Amount)
	require.NotNil(t, entries[0].ReferenceID)
	assert.Equal(t, req.RequestID, *entries[0].ReferenceID)
}

func TestProcess_FatalFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := h.submit(t, "u1", 5)

	h.gen.On("Generate", mock.Anything, mock.Anything).Return("", fmt.Errorf("%w: status 400", apperrors.ErrFatal)).Once()
	runAttempts(t, h, 1)

	assert.Equal(t, domain.RequestFailed, h.status(t, req.RequestID))
	dead, err := h.queue.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 1, dead[0].Attempts)
}

func TestProcess_TimeoutIsTransient(t *testing.T) {
	h := newHarness(t, jobs.WithGenerationTimeout(20*time.Millisecond))
	req := h.submit(t, "u1", 5)

	h.gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return("", context.DeadlineExceeded).Once()
	runAttempts(t, h, 1)

	assert.Equal(t, domain.RequestPending, h.status(t, req.RequestID))
}

func TestProcess_MissingRequestIsDeadLettered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.queue.Enqueue(ctx, "no-such-request")
	require.NoError(t, err)
	require.NoError(t, h.processor.Process(ctx, h.next(t)))

	stats, _ := h.queue.Stats(ctx)
	assert.Equal(t, int64(1), stats.Dead)
	h.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
