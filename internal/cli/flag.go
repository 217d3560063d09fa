package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/services"
)

// FlagCmd returns the flag command
func FlagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Manage feature flags",
	}
	cmd.AddCommand(flagSetCmd())
	cmd.AddCommand(flagOverrideCmd())
	cmd.AddCommand(flagEvalCmd())
	return cmd
}

func flagSetCmd() *cobra.Command {
	var (
		global      bool
		pct         int
		description string
	)

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a flag definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pct < 0 || pct > 100 {
				return fmt.Errorf("--pct must be within 0..100, got %d", pct)
			}
			_, log, store, err := openStore()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer store.Close()

			flagRepo := repos.NewFeatureFlagRepo(store.DB(), log)
			flag := &types.FeatureFlag{
				Name:              args[0],
				Description:       description,
				GlobalEnabled:     global,
				RolloutPercentage: pct,
			}
			if err := flagRepo.Upsert(dbctx.Context{Ctx: cmd.Context()}, flag); err != nil {
				return fmt.Errorf("save flag: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s global=%t rollout=%d%%\n",
				color.New(color.FgGreen).Sprint("saved"), args[0], global, pct)
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "enable for every tenant")
	cmd.Flags().IntVar(&pct, "pct", 0, "rollout percentage (0-100)")
	cmd.Flags().StringVar(&description, "description", "", "flag description")
	return cmd
}

func flagOverrideCmd() *cobra.Command {
	var enabled bool

	cmd := &cobra.Command{
		Use:   "override <name> <org-id>",
		Short: "Force a flag on or off for one organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid org id: %w", err)
			}
			_, log, store, err := openStore()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer store.Close()

			dbc := dbctx.Context{Ctx: cmd.Context()}
			flagRepo := repos.NewFeatureFlagRepo(store.DB(), log)
			flag, err := flagRepo.GetByName(dbc, args[0])
			if err != nil {
				return fmt.Errorf("load flag: %w", err)
			}
			if flag == nil {
				return fmt.Errorf("unknown flag %q; create it with `hubctl flag set`", args[0])
			}
			if err := flagRepo.SetOverride(dbc, flag.ID, orgID, enabled); err != nil {
				return fmt.Errorf("save override: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s: enabled=%t\n",
				color.New(color.FgGreen).Sprint("override"), flag.Name, orgID, enabled)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "override value")
	return cmd
}

func flagEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <name> <org-id>",
		Short: "Resolve a flag for one organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid org id: %w", err)
			}
			_, log, store, err := openStore()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer store.Close()

			svc := services.NewFeatureFlagService(log, repos.NewFeatureFlagRepo(store.DB(), log))
			d, err := svc.Evaluate(dbctx.Context{Ctx: cmd.Context()}, orgID, args[0])
			if err != nil {
				return err
			}
			state := color.New(color.FgRed).Sprint("OFF")
			if d.Enabled {
				state = color.New(color.FgGreen).Sprint("ON")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (source=%s bucket=%d)\n", args[0], state, d.Source, d.Bucket)
			return nil
		},
	}
}
