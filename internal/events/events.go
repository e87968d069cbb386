package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// TypeCardReviewed is emitted once a review has been committed.
const TypeCardReviewed = "card.reviewed"

// Event is a domain event with a JSON payload.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the payload shape, e.g. TypeCardReviewed
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}, now time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: domain.TruncateMillis(now),
	}, nil
}

// CardReviewed is the payload of a TypeCardReviewed event.
type CardReviewed struct {
	CardID       uuid.UUID              `json:"cardId"`
	CollectionID uuid.UUID              `json:"collectionId"`
	UserID       uuid.UUID              `json:"userId"`
	Rating       domain.Rating          `json:"rating"`
	Previous     domain.SchedulingState `json:"previous"`
	Next         domain.SchedulingState `json:"next"`
	ReviewedAt   time.Time              `json:"reviewedAt"`
}

// NewCardReviewedEvent wraps a CardReviewed payload in an Event stamped
// with the review time.
func NewCardReviewedEvent(payload CardReviewed) (*Event, error) {
	return NewEvent(TypeCardReviewed, payload, payload.ReviewedAt)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
