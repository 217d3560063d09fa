package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dohigg1/advisory-hub/internal/clients/gcp"
	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	"github.com/dohigg1/advisory-hub/internal/data/db"
	"github.com/dohigg1/advisory-hub/internal/observability"
	"github.com/dohigg1/advisory-hub/internal/platform/sendgrid"
)

type Config struct {
	LogMode           string        `env:"LOG_MODE" envDefault:"development"`
	Port              string        `env:"PORT" envDefault:"8080"`
	JWTSecretKey      string        `env:"JWT_SECRET_KEY,notEmpty"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AutoMigrate       bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	PlanLimitsFile    string        `env:"PLAN_LIMITS_FILE"`
	PortalBaseURL     string        `env:"PORTAL_BASE_URL"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	NotifyConcurrency int           `env:"NOTIFY_CONCURRENCY" envDefault:"4"`

	DB       db.Config
	SendGrid sendgrid.Config
	Redis    redis.Config
	GCP      gcp.Config
	Otel     observability.OtelConfig
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.NotifyConcurrency <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_CONCURRENCY must be positive, got %d", cfg.NotifyConcurrency)
	}
	return cfg, nil
}
