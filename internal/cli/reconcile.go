package cli

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation sweep and exit",
	Long: `reconcile recovers expired job leases, resets requests stuck in processing
and re-enqueues pending requests that have no live job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.QueueDriver == config.QueueDriverMemory || cfg.StorageDriver == config.StorageDriverMemory {
			return fmt.Errorf("reconcile needs shared storage and queue; memory drivers are per-process")
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.newReconciler().Sweep(cmd.Context())
		if err != nil {
			logger.Error("Reconciliation failed", slog.String("error", err.Error()))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recovered leases: %d\nrequeued: %d\nreset: %d\n",
			report.RecoveredLeases, report.Requeued, report.Reset)
		return nil
	},
}
