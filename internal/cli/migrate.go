package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, store, err := openStore()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer store.Close()

			if err := store.AutoMigrateAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date (%s)\n",
				color.New(color.FgGreen).Sprint("✓"), store.DB().Dialector.Name())
			return nil
		},
	}
}
