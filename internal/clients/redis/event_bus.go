package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

const (
	EventLeadCaptured           = "lead.captured"
	EventLeadCompleted          = "lead.completed"
	EventLeadNarrativeRequested = "lead.narrative_requested"
	EventAssessmentNotified     = "assessment.notified"
)

type Event struct {
	Type     string         `json:"type"`
	OrgID    uuid.UUID      `json:"org_id"`
	EntityID uuid.UUID      `json:"entity_id"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

type Config struct {
	Addr    string `env:"REDIS_ADDR"`
	Channel string `env:"REDIS_CHANNEL" envDefault:"advisory-events"`
}

type EventBus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, onEvent func(Event)) error
	Close() error
}

type eventBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

// NewEventBus dials Redis and verifies the connection.
func NewEventBus(log *logger.Logger, cfg Config) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewEventBusWithClient(log, rdb, cfg.Channel), nil
}

func NewEventBusWithClient(log *logger.Logger, rdb goredis.UniversalClient, channel string) EventBus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "advisory-events"
	}
	return &eventBus{
		log:     log.With("client", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *eventBus) Publish(ctx context.Context, ev Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Subscribe forwards events to onEvent until ctx is done.
func (b *eventBus) Subscribe(ctx context.Context, onEvent func(Event)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad redis event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *eventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
