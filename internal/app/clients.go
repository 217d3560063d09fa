package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dohigg1/advisory-hub/internal/clients/gcp"
	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/platform/sendgrid"
)

// Clients holds the optional outbound integrations. A nil field means the integration is not configured.
type Clients struct {
	EventBus    redis.EventBus
	Mailer      sendgrid.Client
	ExportStore gcp.ExportStore
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		bus, err := redis.NewEventBus(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.EventBus = bus
	} else {
		log.Warn("REDIS_ADDR not set; realtime events disabled")
	}

	// SendGrid
	if cfg.SendGrid.Enabled() {
		mailer, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.Mailer = mailer
	} else {
		log.Warn("SENDGRID_API_KEY not set; portal emails disabled")
	}

	// Gcs
	if strings.TrimSpace(cfg.GCP.ExportBucket) != "" {
		store, err := gcp.NewExportStore(ctx, log, cfg.GCP)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init export store: %w", err)
		}
		out.ExportStore = store
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.ExportStore != nil {
		_ = c.ExportStore.Close()
	}
}
