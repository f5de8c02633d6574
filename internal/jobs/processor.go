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
	"github.com/google/uuid"
)

// Processor drives one job through generation.
type Processor struct {
	queue     Queue
	requests  portssvc.RequestWriterSvc
	reader    portsrepo.RequestReader
	types     portsrepo.RequestTypeRepository
	ledger    portssvc.LedgerTxSvc
	generator portssvc.Generator
	notifier  portssvc.Notifier
	metrics   *Metrics
	policy    RetryPolicy
	timeout   time.Duration
	refund    bool
	clock     func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(policy RetryPolicy) ProcessorOption {
	return func(p *Processor) { p.policy = policy }
}

// WithGenerationTimeout bounds each call to the generator.
func WithGenerationTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.timeout = d }
}

// WithRefundOnFailure credits the request's cost back when it fails terminally.
func WithRefundOnFailure(enabled bool) ProcessorOption {
	return func(p *Processor) { p.refund = enabled }
}

// WithNotifier tells reviewers about new results.
func WithNotifier(n portssvc.Notifier) ProcessorOption {
	return func(p *Processor) { p.notifier = n }
}

// WithMetrics records outcomes.
func WithMetrics(m *Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

// WithProcessorClock replaces the time source.
func WithProcessorClock(clock func() time.Time) ProcessorOption {
	return func(p *Processor) { p.clock = clock }
}

// NewProcessor creates a job processor.
func NewProcessor(
	queue Queue,
	requests portssvc.RequestWriterSvc,
	reader portsrepo.RequestReader,
	types portsrepo.RequestTypeRepository,
	ledger portssvc.LedgerTxSvc,
	generator portssvc.Generator,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		queue:     queue,
		requests:  requests,
		reader:    reader,
		types:     types,
		ledger:    ledger,
		generator: generator,
		policy:    DefaultRetryPolicy(),
		timeout:   60 * time.Second,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) now() time.Time {
	return p.clock().UTC()
}

// Process runs one delivery of job. A returned error means the job was left
// leased and will be recovered when the lease expires.
func (p *Processor) Process(ctx context.Context, job domain.Job) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("job_id", job.JobID),
		slog.String("request_id", job.RequestID),
		slog.Int("attempt", job.Attempts+1),
	)
	ctx = middleware.WithLogger(ctx, logger)

	start := p.now()
	p.metrics.started()
	defer p.metrics.finished()

	err := p.requests.Transition(ctx, job.RequestID, domain.RequestPending, domain.RequestProcessing, nil)
	switch {
	case errors.Is(err, apperrors.ErrStaleState):
		// another delivery already claimed or finished this request
		logger.Info("Duplicate delivery, dropping job")
		p.metrics.observe(OutcomeDuplicate, p.now().Sub(start))
		return p.queue.Ack(ctx, job)
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Request vanished, dead-lettering job")
		p.metrics.observe(OutcomeFailed, p.now().Sub(start))
		return p.queue.Dead(ctx, job, err)
	case err != nil:
		return fmt.Errorf("failed to claim request: %w", err)
	}

	req, reqType, err := p.load(ctx, job.RequestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrFatal) {
			job.Attempts++
			return p.fail(ctx, job, reqType, err, start)
		}
		return p.transient(ctx, job, reqType, err, start)
	}

	input, _ := req.Input()
	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	text, err := p.generator.Generate(genCtx, portssvc.GenerationInput{
		RequestID: req.RequestID,
		TypeID:    reqType.TypeID,
		TypeName:  reqType.Name,
		Input:     input,
	})
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrFatal) {
			job.Attempts++
			return p.fail(ctx, job, reqType, err, start)
		}
		return p.transient(ctx, job, reqType, err, start)
	}

	return p.succeed(ctx, job, text, start)
}

// load re-reads the request and re-validates its input. Validation failures
// are fatal; storage errors are transient.
func (p *Processor) load(ctx context.Context, requestID string) (*domain.FortuneRequest, *domain.RequestType, error) {
	req, err := p.reader.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request: %w", err)
	}
	reqType, err := p.types.FindTypeByID(ctx, req.TypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: request type %s is gone", apperrors.ErrFatal, req.TypeID)
		}
		return nil, nil, fmt.Errorf("failed to load request type: %w", err)
	}
	input, err := req.Input()
	if err != nil {
		return nil, reqType, fmt.Errorf("%w: undecodable input: %v", apperrors.ErrFatal, err)
	}
	if err := reqType.InputSchema.Validate(input); err != nil {
		return nil, reqType, fmt.Errorf("%w: %v", apperrors.ErrFatal, err)
	}
	return req, reqType, nil
}

func (p *Processor) succeed(ctx context.Context, job domain.Job, text string, start time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := p.now()
	result := domain.GenerationResult{
		ResultID:   uuid.NewString(),
		RequestID:  job.RequestID,
		RawText:    text,
		Status:     domain.ResultPendingReview,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err := p.requests.Transition(ctx, job.RequestID, domain.RequestProcessing, domain.RequestAIGenerated,
		func(ctx context.Context, tx portsrepo.TxRepositories) error {
			return tx.Results.SaveResult(ctx, result)
		})
	if errors.Is(err, apperrors.ErrStaleState) || errors.Is(err, apperrors.ErrDuplicate) {
		logger.Info("Result already recorded by another delivery")
		p.metrics.observe(OutcomeDuplicate, p.now().Sub(start))
		return p.queue.Ack(ctx, job)
	}
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	if err := p.queue.Ack(ctx, job); err != nil {
		logger.Error("Failed to ack job", slog.String("error", err.Error()))
	}
	p.metrics.observe(OutcomeSucceeded, p.now().Sub(start))
	logger.Info("Generation succeeded", slog.String("result_id", result.ResultID))

	if p.notifier != nil {
		if err := p.notifier.ResultGenerated(ctx, result); err != nil {
			logger.Warn("Reviewer notification failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (p *Processor) transient(ctx context.Context, job domain.Job, reqType *domain.RequestType, cause error, start time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	job.Attempts++
	job.LastError = cause.Error()

	if !p.policy.ShouldRetry(job.Attempts) {
		logger.Warn("Retries exhausted", slog.String("error", cause.Error()))
		return p.fail(ctx, job, reqType, cause, start)
	}

	if err := p.requests.Transition(ctx, job.RequestID, domain.RequestProcessing, domain.RequestPending, nil); err != nil {
		return fmt.Errorf("failed to release request for retry: %w", err)
	}
	delay := p.policy.Backoff(job.Attempts)
	if err := p.queue.Retry(ctx, job, delay, cause); err != nil {
		return fmt.Errorf("failed to reschedule job: %w", err)
	}
	p.metrics.observe(OutcomeRetried, p.now().Sub(start))
	logger.Warn("Generation failed, retry scheduled",
		slog.String("error", cause.Error()),
		slog.Duration("backoff", delay))
	return nil
}

// fail moves the request to failed and dead-letters the job. With refunds
// enabled the cost is credited back in the same unit as the transition.
func (p *Processor) fail(ctx context.Context, job domain.Job, reqType *domain.RequestType, cause error, start time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var sideEffect portsrepo.TxFunc
	if p.refund && reqType != nil && reqType.RequiredCredits > 0 {
		sideEffect = func(ctx context.Context, tx portsrepo.TxRepositories) error {
			req, err := tx.Requests.FindRequestByID(ctx, job.RequestID)
			if err != nil {
				return err
			}
			ref := job.RequestID
			_, err = p.ledger.PostTx(ctx, tx, domain.Posting{
				UserID:      req.UserID,
				Amount:      reqType.RequiredCredits,
				Kind:        domain.EntryRefund,
				Description: reqType.Name + " refund",
				ReferenceID: &ref,
			})
			return err
		}
	}

	if err := p.requests.Transition(ctx, job.RequestID, domain.RequestProcessing, domain.RequestFailed, sideEffect); err != nil {
		return fmt.Errorf("failed to mark request failed: %w", err)
	}
	if err := p.queue.Dead(ctx, job, cause); err != nil {
		return fmt.Errorf("failed to dead-letter job: %w", err)
	}
	p.metrics.observe(OutcomeFailed, p.now().Sub(start))
	logger.Error("Generation failed permanently",
		slog.String("error", cause.Error()),
		slog.Int("attempts", job.Attempts),
		slog.Bool("refunded", sideEffect != nil))
	return nil
}
