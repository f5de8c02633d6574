package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fortune_desk/internal/adapters/artifacts"
	"github.com/SscSPs/fortune_desk/internal/adapters/generation"
	"github.com/SscSPs/fortune_desk/internal/adapters/notify"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/core/services"
	"github.com/SscSPs/fortune_desk/internal/jobs"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/SscSPs/fortune_desk/internal/repositories/database/pgsql"
	"github.com/SscSPs/fortune_desk/internal/repositories/memory"
	"github.com/SscSPs/fortune_desk/pkg/database"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	repos    portsrepo.RepositoryProvider
	queue    jobs.Queue
	notifier portssvc.Notifier
	services *portssvc.ServiceContainer
	registry *prometheus.Registry
	metrics  *jobs.Metrics
	closers  []func() error
}

// newApp connects storage, queue and adapters according to cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = jobs.NewMetrics(a.registry)

	if err := a.openStorage(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.openQueue(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.openAdapters(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.StorageDriver {
	case config.StorageDriverMemory:
		a.logger.Warn("Using in-memory storage; data is lost on exit")
		a.repos = memory.NewStore(memory.DefaultRequestTypes()...).Provider()
		return nil
	default:
		pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, a.cfg.EnableDBCheck)
		if err != nil {
			return fmt.Errorf("failed to initialize database pool: %w", err)
		}
		a.closers = append(a.closers, func() error { database.ClosePgxPool(pool); return nil })
		a.repos = pgsql.NewRepositoryProvider(pool)
		return nil
	}
}

func (a *app) openQueue(ctx context.Context) error {
	switch a.cfg.QueueDriver {
	case config.QueueDriverMemory:
		a.queue = jobs.NewMemoryQueue(a.cfg.JobLeaseDuration)
		return nil
	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.RedisAddr, err)
		}
		a.queue = jobs.NewRedisQueue(rdb, a.cfg.JobLeaseDuration)
		return nil
	}
}

func (a *app) openAdapters() error {
	collab := services.Collaborators{Queue: a.queue, Inspector: a.queue}

	if a.cfg.AMQPURL != "" {
		n, err := notify.NewAMQPNotifier(a.cfg.AMQPURL, a.cfg.NotifyExchange)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, n.Close)
		a.notifier = n
	} else {
		a.notifier = notify.LogNotifier{}
	}
	collab.Notifier = a.notifier

	if a.cfg.S3Bucket != "" {
		store, err := artifacts.NewS3Store(a.cfg.AWSRegion, a.cfg.S3Bucket)
		if err != nil {
			return err
		}
		collab.Artifacts = store
	}

	a.services = services.NewServiceContainer(a.cfg, a.repos, collab)
	return nil
}

// newProcessor builds the job handler from the configured retry policy.
func (a *app) newProcessor() (*jobs.Processor, error) {
	prompt, err := generation.NewPromptRenderer("")
	if err != nil {
		return nil, err
	}
	if a.cfg.GenerationAPIKey == "" {
		a.logger.Warn("GENERATION_API_KEY is empty; generation calls will be rejected")
	}
	client := generation.NewClient(a.cfg, prompt)

	return jobs.NewProcessor(
		a.queue,
		a.services.Fortune,
		a.repos.RequestRepo,
		a.repos.TypeRepo,
		a.services.Ledger,
		client,
		jobs.WithRetryPolicy(jobs.RetryPolicy{MaxAttempts: a.cfg.JobMaxAttempts, BaseDelay: a.cfg.JobBackoffBase}),
		jobs.WithGenerationTimeout(a.cfg.GenerationTimeout),
		jobs.WithRefundOnFailure(a.cfg.RefundOnFailure),
		jobs.WithNotifier(a.notifier),
		jobs.WithMetrics(a.metrics),
	), nil
}

func (a *app) newWorkerPool() (*jobs.WorkerPool, error) {
	processor, err := a.newProcessor()
	if err != nil {
		return nil, err
	}
	return jobs.NewWorkerPool(jobs.PoolConfig{
		Concurrency:  a.cfg.WorkerConcurrency,
		PollInterval: a.cfg.JobPollInterval,
	}, a.queue, processor), nil
}

func (a *app) newReconciler() *jobs.Reconciler {
	return jobs.NewReconciler(a.queue, a.repos.RequestRepo, a.services.Fortune,
		a.cfg.ReconcilePendingGrace, a.cfg.ReconcileStaleAfter)
}

// close releases connections in reverse order of opening.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Error during shutdown", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
