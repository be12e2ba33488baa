// Package events is the push-notification backbone: match and message
// changes are published to per-user and per-match Redis channels, and
// live subscriptions consume them until explicitly closed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/auralabs/aura-server/internal/db"
)

const (
	KindMatchCreated   = "match.created"
	KindMatchUpdated   = "match.updated"
	KindMessageCreated = "message.created"
)

// Event is the unit delivered to subscribers. Exactly one of Match or
// Message is set, depending on Kind.
type Event struct {
	Kind    string      `json:"kind"`
	Match   *db.Match   `json:"match,omitempty"`
	Message *db.Message `json:"message,omitempty"`
}

// UserChannel carries match lifecycle events for one user.
func UserChannel(userID uint64) string {
	return fmt.Sprintf("events:user:%d", userID)
}

// MatchChannel carries message events for one conversation.
func MatchChannel(matchID string) string {
	return fmt.Sprintf("events:match:%s", matchID)
}

// Bus fans events out through Redis pub/sub so subscriptions work across
// processes, not just within one.
type Bus struct {
	client *redis.Client
	log    *slog.Logger
}

func NewBus(client *redis.Client, log *slog.Logger) *Bus {
	return &Bus{client: client, log: log}
}

// Publish sends the event to a channel. Delivery is best-effort: a failed
// publish is logged and the write that triggered it is not rolled back.
func (b *Bus) Publish(ctx context.Context, channel string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		b.log.Warn("event publish failed", "channel", channel, "kind", ev.Kind, "err", err)
		return err
	}
	return nil
}

// Subscribe opens a live subscription on a channel. The caller owns the
// returned Subscription and must Close it; Close tears down the Redis
// listener and the delivery goroutine.
func (b *Bus) Subscribe(ctx context.Context, channel string) *Subscription {
	pubsub := b.client.Subscribe(ctx, channel)

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Event, 64),
	}

	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("dropping malformed event", "channel", channel, "err", err)
				continue
			}
			select {
			case sub.events <- ev:
			default:
				// slow consumer: drop rather than stall the pump
				b.log.Warn("dropping event for slow subscriber", "channel", channel, "kind", ev.Kind)
			}
		}
	}()

	return sub
}

// Subscription is a cancellable stream of events for one channel.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
}

// Events returns the delivery channel. It is closed after Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unsubscribes and releases the underlying listener. After Close
// returns no further events are delivered. Safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
