package cli

import (
	"fmt"

	"github.com/SscSPs/fortune_desk/pkg/database"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply (up) or roll back one (down) database migration",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := database.MigrateUp
		if len(args) == 1 {
			direction = database.MigrateDirection(args[0])
		}

		changed, err := database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, direction)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", direction)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "no change")
		}
		return nil
	},
}
