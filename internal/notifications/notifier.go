// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel carrying all domain events.
const EventsChannel = "agora:events"

// Notifier publishes domain events into a Redis pub/sub channel.
// A nil Redis client makes every publish a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEvent serializes the event as JSON and publishes it.
func (n *Notifier) PublishEvent(ctx context.Context, ev models.Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, EventsChannel, string(payload)).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("publish").Inc()
		return err
	}
	observability.EventsPublishedTotal.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// StartSubscriber subscribes to the events channel and calls onEvent for each
// incoming event until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(ev models.Event)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					var ev models.Event
					if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
						log.Printf("invalid event payload on %s: %v", msg.Channel, err)
						return
					}
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
