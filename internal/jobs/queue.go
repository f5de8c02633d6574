// Package jobs runs generation work in the background: a leased job queue,
// the retry policy, the processor that drives one job through the request
// state machine, the worker pool and the reconciliation sweep.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
)

// ErrEmpty is returned by Dequeue when no job is ready.
var ErrEmpty = errors.New("queue: no job ready")

// Queue is an at-least-once job queue. A dequeued job is leased; if it is
// neither acked, retried nor dead-lettered before the lease expires,
// RecoverExpiredLeases makes it visible again.
type Queue interface {
	portssvc.JobEnqueuer
	portssvc.QueueInspector

	// Ensure is Enqueue that also reports whether the call scheduled work:
	// false means a live job was already waiting or leased.
	Ensure(ctx context.Context, requestID string) (job *domain.Job, scheduled bool, err error)
	Dequeue(ctx context.Context) (*domain.Job, error)
	Ack(ctx context.Context, job domain.Job) error
	// Retry makes job visible again after delay. job carries the updated
	// attempt count.
	Retry(ctx context.Context, job domain.Job, delay time.Duration, cause error) error
	// Dead moves job to the dead letter set. Dead jobs are kept.
	Dead(ctx context.Context, job domain.Job, cause error) error
	RecoverExpiredLeases(ctx context.Context) (int, error)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
