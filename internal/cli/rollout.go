package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dohigg1/advisory-hub/internal/rollout"
)

// RolloutCmd returns the rollout command
func RolloutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Inspect percentage rollout bucketing",
	}
	cmd.AddCommand(rolloutBucketCmd())
	return cmd
}

func rolloutBucketCmd() *cobra.Command {
	var pct int

	cmd := &cobra.Command{
		Use:   "bucket <tenant-id>",
		Short: "Show the rollout bucket for a tenant",
		Long: `Print the deterministic bucket (0-99) a tenant id hashes to.
With --pct, also report whether a flag at that rollout percentage is on for the tenant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant := args[0]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tenant: %s\n", tenant)
			fmt.Fprintf(out, "hash:   %d\n", rollout.Hash(tenant))
			fmt.Fprintf(out, "bucket: %d\n", rollout.Bucket(tenant))
			if cmd.Flags().Changed("pct") {
				if pct < 0 || pct > 100 {
					return fmt.Errorf("--pct must be within 0..100, got %d", pct)
				}
				state := color.New(color.FgRed).Sprint("OFF")
				if rollout.InRollout(tenant, pct) {
					state = color.New(color.FgGreen).Sprint("ON")
				}
				fmt.Fprintf(out, "at %d%%: %s\n", pct, state)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pct, "pct", 0, "rollout percentage to test against")
	return cmd
}
