package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu           sync.Mutex
	Events       []*Event
	HandlerError error
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return h.HandlerError
}

func (h *MockEventHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Events)
}

func TestNewCardReviewedEvent(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	prev := domain.NewSchedulingState(now.Add(-time.Hour))
	next := prev
	next.State = domain.CardStateReview
	next.LastInterval = 1
	next.Reps = 1
	next.DueAt = now.Add(24 * time.Hour)

	payload := CardReviewed{
		CardID:       uuid.New(),
		CollectionID: uuid.New(),
		UserID:       uuid.New(),
		Rating:       domain.RatingGood,
		Previous:     prev,
		Next:         next,
		ReviewedAt:   now,
	}

	event, err := NewCardReviewedEvent(payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeCardReviewed, event.Type)
	assert.True(t, event.CreatedAt.Equal(now))

	var decoded CardReviewed
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload.CardID, decoded.CardID)
	assert.Equal(t, domain.RatingGood, decoded.Rating)
	assert.Equal(t, 1, decoded.Next.Reps)
	assert.True(t, decoded.Next.DueAt.Equal(next.DueAt))
	assert.Contains(t, string(event.Payload), `"rating":3`)
}

func TestNewEventUnsupportedPayload(t *testing.T) {
	t.Parallel()
	_, err := NewEvent("bad", make(chan int), time.Now())
	assert.Error(t, err)
}
