package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SscSPs/fortune_desk/internal/handlers"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/SscSPs/fortune_desk/pkg/database"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("workers", false, "Also run the worker pool and reconciler in this process (always on with the memory queue)")
	serveCmd.Flags().Bool("migrate", true, "Apply pending database migrations before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	withWorkers, _ := cmd.Flags().GetBool("workers")
	migrate, _ := cmd.Flags().GetBool("migrate")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate && cfg.StorageDriver == config.StorageDriverPostgres {
		if _, err := database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			return err
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.close()

	router, err := handlers.NewRouter(cfg, logger, a.services, a.registry, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	var background sync.WaitGroup
	// the memory queue is only reachable from this process
	if withWorkers || cfg.QueueDriver == config.QueueDriverMemory {
		if err := startBackground(ctx, a, &background); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
			background.Wait()
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	background.Wait()
	return nil
}

// startBackground runs the worker pool and reconciler until ctx is done.
func startBackground(ctx context.Context, a *app, wg *sync.WaitGroup) error {
	pool, err := a.newWorkerPool()
	if err != nil {
		return err
	}
	reconciler := a.newReconciler()

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Worker pool stopped", slog.String("error", err.Error()))
		}
	}()
	go func() {
		defer wg.Done()
		if err := reconciler.Run(ctx, a.cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Reconciler stopped", slog.String("error", err.Error()))
		}
	}()
	a.logger.Info("Background workers started", slog.Int("concurrency", a.cfg.WorkerConcurrency))
	return nil
}
