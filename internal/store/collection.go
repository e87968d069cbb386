package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-decks/internal/domain"
)

// CollectionStore defines the interface for collection data persistence.
type CollectionStore interface {
	// Create saves a new collection.
	Create(ctx context.Context, collection *domain.Collection) error

	// GetByID retrieves a collection by its unique ID.
	// Returns ErrCollectionNotFound if the collection does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error)

	// ListByUser returns the user's collections, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error)

	// Delete removes a collection and, through ON DELETE CASCADE, its cards.
	// Returns ErrCollectionNotFound if the collection does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CollectionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CollectionStore
}
