package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type memoryBus struct {
	published []redis.Event
	err       error
}

func (b *memoryBus) Publish(_ context.Context, ev redis.Event) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, ev)
	return nil
}

func (b *memoryBus) Subscribe(context.Context, func(redis.Event)) error { return nil }
func (b *memoryBus) Close() error { return nil }

func TestEventPublisherGatedByRealtimeFlag(t *testing.T) {
	bus := &memoryBus{}
	flags := &fakeFlags{on: map[string]bool{}}
	p := NewEventPublisher(logger.Nop(), bus, flags)
	ev := redis.Event{Type: redis.EventLeadCaptured, OrgID: uuid.New(), EntityID: uuid.New()}

	p.Publish(context.Background(), ev)
	if len(bus.published) != 0 {
		t.Fatalf("flag off: want no events got=%d", len(bus.published))
	}

	flags.on[types.FlagRealtimeEvents] = true
	p.Publish(context.Background(), ev)
	if len(bus.published) != 1 || bus.published[0].Type != redis.EventLeadCaptured {
		t.Fatalf("flag on: got=%v", bus.published)
	}

	bus.err = errors.New("connection refused")
	p.Publish(context.Background(), ev)
}

func TestEventPublisherWithoutBus(t *testing.T) {
	p := NewEventPublisher(logger.Nop(), nil, nil)
	p.Publish(context.Background(), redis.Event{Type: redis.EventLeadCompleted})
}
