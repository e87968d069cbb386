package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection-specific validation errors
var (
	ErrCollectionIDEmpty     = errors.New("collection ID cannot be empty")
	ErrCollectionUserIDEmpty = errors.New("collection user ID cannot be empty")
	ErrCollectionTitleEmpty  = errors.New("collection title cannot be empty")
)

// Collection is a named group of cards owned by one user.
type Collection struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCollection creates a new Collection owned by userID.
// Returns an error if validation fails.
func NewCollection(userID uuid.UUID, title, description string, now time.Time) (*Collection, error) {
	c := &Collection{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   TruncateMillis(now),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks if the Collection has valid data.
func (c *Collection) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCollectionIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCollectionUserIDEmpty
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrCollectionTitleEmpty
	}
	return nil
}

// IsOwnedBy reports whether userID owns the collection.
func (c *Collection) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && c.UserID == userID
}
