package server

import (
	"context"
	"log"

	"agora/internal/archive"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"
)

// eventFanout delivers every engine event to the realtime layer and the
// archive. With Redis available, events flow through pub/sub so all server
// instances fan them out to their own websocket clients; without it, the
// local hub is fed directly. The engine publishes inside its critical
// section, so sinks observe events in mutation order.
type eventFanout struct {
	notifier   *notifications.Notifier
	hub        *notifications.Hub
	archive    *archive.Store
	likeReward int64
}

// Publish implements social.EventSink. Delivery failures are logged, never
// surfaced: the mutation already happened and must not be rolled back for a
// lost notification.
func (f *eventFanout) Publish(ctx context.Context, ev models.Event) {
	if f.notifier != nil {
		if err := f.notifier.PublishEvent(ctx, ev); err != nil {
			log.Printf("failed to publish %s event: %v", ev.Type, err)
		}
	} else if f.hub != nil {
		f.hub.BroadcastEvent(ev)
		observability.EventsPublishedTotal.WithLabelValues(string(ev.Type)).Inc()
	}

	if f.archive != nil {
		if err := f.archive.Record(ctx, ev, f.likeReward); err != nil {
			log.Printf("failed to archive %s event: %v", ev.Type, err)
		}
	}

	if ev.Type == models.EventReactionAdded {
		if liked, _ := ev.Payload["liked"].(bool); liked {
			observability.RecordRewardCredit(f.likeReward)
		}
	}
}
