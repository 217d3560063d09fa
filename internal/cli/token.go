package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpMW "github.com/dohigg1/advisory-hub/internal/http/middleware"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id> <org-id>",
		Short: "Mint an admin API bearer token signed with JWT_SECRET_KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			orgID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid org id: %w", err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecretKey == "" {
				return errors.New("JWT_SECRET_KEY is not set")
			}
			tok, err := httpMW.IssueToken(cfg.JWTSecretKey, userID, orgID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
