// Package cli implements hubctl, the operator command line for the advisory hub.
package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/dohigg1/advisory-hub/internal/data/db"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// Config is the subset of server configuration the operator commands need.
type Config struct {
	LogMode        string `env:"HUBCTL_LOG_MODE" envDefault:"test"`
	JWTSecretKey   string `env:"JWT_SECRET_KEY"`
	PlanLimitsFile string `env:"PLAN_LIMITS_FILE"`
	DB             db.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// openStore connects to the configured database. Callers close the store and sync the logger.
func openStore() (Config, *logger.Logger, *db.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return Config{}, nil, nil, err
	}
	return cfg, log, store, nil
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hubctl",
		Short:         "Operator tooling for the advisory hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(RolloutCmd())
	rootCmd.AddCommand(FlagCmd())
	rootCmd.AddCommand(EntitlementCmd())
	rootCmd.AddCommand(WebhookCmd())
	rootCmd.AddCommand(TokenCmd())
	return rootCmd
}
