package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of a domain event.
type EventType string

// Event type constants prevent typos in event names.
const (
	EventProfileCreated EventType = "profile_created"
	EventPostCreated    EventType = "post_created"
	EventCommentAdded   EventType = "comment_added"
	EventReactionAdded  EventType = "reaction_added"
	EventFollowed       EventType = "followed"
	EventUnfollowed     EventType = "unfollowed"
)

// Event is the notification emitted once per successful mutation.
type Event struct {
	ID      string                 `json:"id"`
	Type    EventType              `json:"type"`
	At      time.Time              `json:"at"`
	Payload map[string]interface{} `json:"payload"`
}

// NewEvent builds an Event with a fresh id and the given payload.
func NewEvent(typ EventType, at time.Time, payload map[string]interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    typ,
		At:      at,
		Payload: payload,
	}
}
