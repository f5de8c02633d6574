package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/middleware"
)

// reconcileBatch is the page size used to walk the backlog.
var reconcileBatch = 100

// Reconciler finds requests the queue lost track of and hands them back.
type Reconciler struct {
	queue        Queue
	reader       portsrepo.RequestReader
	requests     portssvc.RequestWriterSvc
	pendingGrace time.Duration
	staleAfter   time.Duration
	clock        func() time.Time
}

// NewReconciler creates a reconciler. Pending requests untouched for
// pendingGrace are re-enqueued; processing requests untouched for staleAfter
// are reset to pending and re-enqueued.
func NewReconciler(queue Queue, reader portsrepo.RequestReader, requests portssvc.RequestWriterSvc, pendingGrace, staleAfter time.Duration) *Reconciler {
	return &Reconciler{
		queue:        queue,
		reader:       reader,
		requests:     requests,
		pendingGrace: pendingGrace,
		staleAfter:   staleAfter,
		clock:        time.Now,
	}
}

// WithClock replaces the reconciler's time source.
func (r *Reconciler) WithClock(clock func() time.Time) *Reconciler {
	r.clock = clock
	return r
}

// SweepReport counts what one sweep did.
type SweepReport struct {
	RecoveredLeases int `json:"recoveredLeases"`
	Requeued        int `json:"requeued"`
	Reset           int `json:"reset"`
}

// Sweep runs one reconciliation pass.
func (r *Reconciler) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	logger := middleware.GetLoggerFromCtx(ctx)
	now := r.clock().UTC()

	n, err := r.queue.RecoverExpiredLeases(ctx)
	if err != nil {
		return report, err
	}
	report.RecoveredLeases = n

	staleBefore := now.Add(-r.staleAfter)
	processing := domain.RequestProcessing
	stale, err := r.scan(ctx, domain.RequestFilter{Status: &processing, UpdatedBefore: &staleBefore})
	if err != nil {
		return report, fmt.Errorf("failed to list stale requests: %w", err)
	}
	for _, req := range stale {
		err := r.requests.Transition(ctx, req.RequestID, domain.RequestProcessing, domain.RequestPending, nil)
		if errors.Is(err, apperrors.ErrStaleState) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to reset request %s: %w", req.RequestID, err)
		}
		report.Reset++
		logger.Warn("Reset stale processing request", slog.String("request_id", req.RequestID))
		// the reset bumps updated_at, so the pending scan below would skip it
		if _, err := r.queue.Enqueue(ctx, req.RequestID); err != nil {
			return report, fmt.Errorf("failed to enqueue request %s: %w", req.RequestID, err)
		}
	}

	pendingBefore := now.Add(-r.pendingGrace)
	pending := domain.RequestPending
	orphans, err := r.scan(ctx, domain.RequestFilter{Status: &pending, UpdatedBefore: &pendingBefore})
	if err != nil {
		return report, fmt.Errorf("failed to list pending requests: %w", err)
	}
	for _, req := range orphans {
		_, scheduled, err := r.queue.Ensure(ctx, req.RequestID)
		if err != nil {
			return report, fmt.Errorf("failed to enqueue request %s: %w", req.RequestID, err)
		}
		// requests waiting out a retry backoff already have a live job
		if scheduled {
			report.Requeued++
		}
	}

	if report != (SweepReport{}) {
		logger.Info("Reconciliation sweep",
			slog.Int("recovered_leases", report.RecoveredLeases),
			slog.Int("requeued", report.Requeued),
			slog.Int("reset", report.Reset))
	}
	return report, nil
}

// scan collects every request matching filter, oldest first, before the
// sweep starts mutating them.
func (r *Reconciler) scan(ctx context.Context, filter domain.RequestFilter) ([]domain.FortuneRequest, error) {
	filter.OldestFirst = true
	var all []domain.FortuneRequest
	for offset := 0; ; offset += reconcileBatch {
		batch, _, err := r.reader.ListRequests(ctx, filter, reconcileBatch, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < reconcileBatch {
			return all, nil
		}
	}
}

// Run sweeps every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.Sweep(ctx); err != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Reconciliation sweep failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
