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

	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().String("metrics-addr", ":9090", "Address for the /metrics endpoint; empty disables it")
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the generation worker pool and reconciler",
	Long: `worker pulls generation jobs from the shared queue. Run as many as needed;
duplicate deliveries are detected and acknowledged without side effects.`,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	if cfg.QueueDriver == config.QueueDriverMemory {
		return fmt.Errorf("the worker command needs a shared queue; use QUEUE_DRIVER=%s or serve --workers", config.QueueDriverRedis)
	}
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.close()

	var metricsSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	var wg sync.WaitGroup
	if err := startBackground(ctx, a, &wg); err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("Draining in-flight jobs")
	wg.Wait()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}
