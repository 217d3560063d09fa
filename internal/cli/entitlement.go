package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/plans"
	"github.com/dohigg1/advisory-hub/internal/services"
)

// EntitlementCmd returns the entitlement command
func EntitlementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entitlement <org-id> [resource]",
		Short: "Show plan usage for an organization",
		Long: `Show current usage against the organization's plan limits.
Resources: assessments, responses_per_month, team_members. Without a resource all are shown.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid org id: %w", err)
			}
			var only plans.Resource
			if len(args) == 2 {
				r, ok := plans.ParseResource(args[1])
				if !ok {
					return fmt.Errorf("unknown resource %q", args[1])
				}
				only = r
			}

			cfg, log, store, err := openStore()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer store.Close()

			table, err := plans.LoadTable(cfg.PlanLimitsFile)
			if err != nil {
				return err
			}
			gdb := store.DB()
			svc := services.NewEntitlementService(log, table,
				repos.NewOrganizationRepo(gdb, log),
				repos.NewAssessmentRepo(gdb, log),
				repos.NewTeamMemberRepo(gdb, log),
				repos.NewLeadRepo(gdb, log),
				nil,
			)
			dbc := dbctx.Context{Ctx: cmd.Context()}

			var rows []plans.Entitlement
			if only != "" {
				e, err := svc.Check(dbc, orgID, only)
				if err != nil {
					return err
				}
				rows = append(rows, *e)
			} else if rows, err = svc.Usage(dbc, orgID); err != nil {
				return err
			}
			printEntitlements(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func printEntitlements(out io.Writer, rows []plans.Entitlement) {
	if len(rows) > 0 {
		fmt.Fprintf(out, "tier: %s\n", rows[0].Tier)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tUSED\tLIMIT\tGRACE\tUSAGE\tSTATE")
	for _, e := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d%%\t%s\n",
			e.Resource, e.Current, limitText(e.Limit), limitText(e.GraceLimit), e.Percentage, entitlementState(e))
	}
	_ = w.Flush()
}

func limitText(n int) string {
	if n == plans.Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(n)
}

func entitlementState(e plans.Entitlement) string {
	switch {
	case !e.Allowed:
		return color.New(color.FgRed).Sprint("BLOCKED")
	case e.SoftOverLimit:
		return color.New(color.FgYellow).Sprint("GRACE")
	default:
		return color.New(color.FgGreen).Sprint("OK")
	}
}
