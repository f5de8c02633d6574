package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/middleware"
)

// JobHandler processes one job delivery.
type JobHandler interface {
	Process(ctx context.Context, job domain.Job) error
}

// PoolConfig controls worker pool behavior.
type PoolConfig struct {
	Concurrency  int           // maximum jobs processed at once (default: 4)
	PollInterval time.Duration // wait between polls of an empty queue (default: 1s)
}

// DefaultPoolConfig returns safe pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Concurrency: 4, PollInterval: time.Second}
}

// WorkerPool pulls jobs from a queue and runs up to Concurrency of them at once.
type WorkerPool struct {
	cfg     PoolConfig
	queue   Queue
	handler JobHandler
	sem     chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	active    int
	completed int64
	errored   int64
}

// NewWorkerPool creates a pool. Zero config fields take their defaults.
func NewWorkerPool(cfg PoolConfig, queue Queue, handler JobHandler) *WorkerPool {
	def := DefaultPoolConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	return &WorkerPool{
		cfg:     cfg,
		queue:   queue,
		handler: handler,
		sem:     make(chan struct{}, cfg.Concurrency),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight jobs to finish.
// Jobs already started are not interrupted by the cancellation.
func (p *WorkerPool) Run(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("Worker pool started", slog.Int("concurrency", p.cfg.Concurrency))
	defer func() {
		p.wg.Wait()
		logger.Info("Worker pool stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p.sem <- struct{}{}:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			<-p.sem
			if !errors.Is(err, ErrEmpty) && ctx.Err() == nil {
				logger.Error("Failed to dequeue job", slog.String("error", err.Error()))
			}
			if !p.wait(ctx) {
				return nil
			}
			continue
		}

		p.wg.Add(1)
		go p.execute(context.WithoutCancel(ctx), *job)
	}
}

func (p *WorkerPool) wait(ctx context.Context) bool {
	t := time.NewTimer(p.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *WorkerPool) execute(ctx context.Context, job domain.Job) {
	defer p.wg.Done()
	defer func() { <-p.sem }()

	p.mu.Lock()
	p.active++
	p.mu.Unlock()

	err := p.handler.Process(ctx, job)

	p.mu.Lock()
	p.active--
	if err != nil {
		p.errored++
	} else {
		p.completed++
	}
	p.mu.Unlock()

	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Job left leased after error",
			slog.String("job_id", job.JobID),
			slog.String("request_id", job.RequestID),
			slog.String("error", err.Error()))
	}
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Active    int   `json:"active"`
	Completed int64 `json:"completed"`
	Errored   int64 `json:"errored"`
	MaxSlots  int   `json:"max_slots"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Active:    p.active,
		Completed: p.completed,
		Errored:   p.errored,
		MaxSlots:  p.cfg.Concurrency,
	}
}
