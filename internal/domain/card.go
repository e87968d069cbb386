package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardCollectionIDEmpty is returned when a card's collection ID is empty or nil.
	ErrCardCollectionIDEmpty = errors.New("card collection ID cannot be empty")

	// ErrCardFrontEmpty is returned when the front side of a card is blank.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when the back side of a card is blank.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// Card is a front/back content pair plus its review schedule.
// Front and back hold markdown.
type Card struct {
	ID           uuid.UUID       `json:"id"`
	CollectionID uuid.UUID       `json:"collectionId"`
	Front        string          `json:"front"`
	Back         string          `json:"back"`
	Scheduling   SchedulingState `json:"scheduling"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewCard creates a new Card in the given collection with default
// scheduling, due at now.
// Returns an error if validation fails.
func NewCard(collectionID uuid.UUID, front, back string, now time.Time) (*Card, error) {
	ts := TruncateMillis(now)
	card := &Card{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Front:        front,
		Back:         back,
		Scheduling:   NewSchedulingState(ts),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.CollectionID == uuid.Nil {
		return ErrCardCollectionIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	return c.Scheduling.Validate()
}

// UpdateContent replaces the non-nil sides of the card and bumps UpdatedAt.
// The card is left untouched if the result would be invalid.
func (c *Card) UpdateContent(front, back *string, now time.Time) error {
	origFront, origBack := c.Front, c.Back
	if front != nil {
		c.Front = *front
	}
	if back != nil {
		c.Back = *back
	}

	if err := c.Validate(); err != nil {
		c.Front, c.Back = origFront, origBack
		return err
	}

	c.UpdatedAt = TruncateMillis(now)
	return nil
}
