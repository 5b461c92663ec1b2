package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Review session event types.
const (
	// TypeSessionStarted is emitted once a session has loaded its cards.
	TypeSessionStarted = "session.started"
	// TypeCardShown is emitted whenever the visible card, face or pause state changes.
	TypeCardShown = "session.card_shown"
	// TypeSuccessRecorded is emitted after a success has been persisted.
	TypeSuccessRecorded = "session.success_recorded"
	// TypeRecordFailed is emitted when persisting a success failed.
	TypeRecordFailed = "session.record_failed"
	// TypeSessionExited is emitted when a session is closed.
	TypeSessionExited = "session.exited"
)

// Event is a notification published by a review session.
// Consumers decode Payload with UnmarshalPayload.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// SessionID identifies the session that emitted the event
	SessionID uuid.UUID `json:"session_id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(sessionID uuid.UUID, eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows sessions to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
