// Package events carries entry change notifications between API instances over redis pub/sub
// and relays them to connected dashboards.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Type string

const (
	EntryCreated Type = "entry.created"
	EntryUpdated Type = "entry.updated"
	EntryDeleted Type = "entry.deleted"
)

type Event struct {
	Type     Type      `json:"type"`
	EntityID string    `json:"entity_id"`
	ActorID  string    `json:"actor_id"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Broker is the slice of the redis client the bus needs.
type Broker interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channel string) *goredis.PubSub
}

// Notifier delivers an event to browsers.
type Notifier interface {
	NotifyEntryChanged(ctx context.Context, eventType, entryID, actorID string, at time.Time) error
}

type RedisBus struct {
	broker  Broker
	channel string
	logger  *zap.Logger
}

func NewRedisBus(broker Broker, channel string, logger *zap.Logger) *RedisBus {
	return &RedisBus{broker: broker, channel: channel, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := b.broker.Publish(ctx, b.channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Relay forwards every event received on the bus to notifier until ctx is done.
func (b *RedisBus) Relay(ctx context.Context, notifier Notifier) {
	sub := b.broker.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handle(ctx, notifier, []byte(msg.Payload))
		}
	}
}

func (b *RedisBus) handle(ctx context.Context, notifier Notifier, payload []byte) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		b.logger.Warn("dropping malformed event", zap.Error(err))
		return
	}
	if err := notifier.NotifyEntryChanged(ctx, string(e.Type), e.EntityID, e.ActorID, e.At); err != nil {
		b.logger.Warn("event relay failed", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

// Direct hands events straight to the notifier. Used when redis is not configured.
type Direct struct {
	notifier Notifier
}

func NewDirect(notifier Notifier) *Direct {
	return &Direct{notifier: notifier}
}

func (d *Direct) Publish(ctx context.Context, e Event) error {
	return d.notifier.NotifyEntryChanged(ctx, string(e.Type), e.EntityID, e.ActorID, e.At)
}
