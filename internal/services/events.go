package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// EventPublisher emits pipeline events. Publishing is best effort and never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, ev redis.Event)
}

type busPublisher struct {
	log   *logger.Logger
	bus   redis.EventBus
	flags FeatureFlagService
}

// NewEventPublisher forwards events to bus for orgs with realtime_events on.
// A nil bus yields a publisher that drops everything.
func NewEventPublisher(log *logger.Logger, bus redis.EventBus, flags FeatureFlagService) EventPublisher {
	return &busPublisher{
		log:   log.With("service", "EventPublisher"),
		bus:   bus,
		flags: flags,
	}
}

func (p *busPublisher) Publish(ctx context.Context, ev redis.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.flags != nil && ev.OrgID != uuid.Nil {
		on, err := p.flags.IsEnabled(dbctx.Context{Ctx: ctx}, ev.OrgID, types.FlagRealtimeEvents)
		if err != nil {
			p.log.Warn("realtime flag lookup failed", "org_id", ev.OrgID, "error", err)
			return
		}
		if !on {
			return
		}
	}
	if err := p.bus.Publish(ctx, ev); err != nil {
		p.log.Warn("event publish failed", "type", ev.Type, "entity_id", ev.EntityID, "error", err)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, redis.Event) {}
