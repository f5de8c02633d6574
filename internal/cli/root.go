// Package cli holds the fortuned commands. Each command loads the
// configuration once and wires only the components it needs.
package cli

import (
	"log/slog"
	"os"

	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fortuned",
	Short: "Fortune request desk: API server, generation workers and maintenance",
	Long: `fortuned runs the fortune request desk.

Customers spend prepaid credits on fortune requests. Workers generate a draft
for each request, operators review and approve it, and the approved text is
published back to the customer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
		slog.SetDefault(logger)

		loaded, err := config.LoadConfig()
		if err != nil {
			logger.Error("Failed to load config", slog.String("error", err.Error()))
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
