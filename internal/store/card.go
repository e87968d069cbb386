package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-decks/internal/domain"
)

// Due-set limits applied by services before calling ListDue.
const (
	DefaultDueLimit = 50
	MaxDueLimit     = 200
)

// NormalizeDueLimit maps a requested due-set size onto the allowed range:
// values <= 0 become DefaultDueLimit and values above MaxDueLimit are capped.
func NormalizeDueLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultDueLimit
	case limit > MaxDueLimit:
		return MaxDueLimit
	default:
		return limit
	}
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. The card must pass domain validation.
	// Returns ErrCollectionNotFound if the collection does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card and, where the backend supports it,
	// locks the row until the surrounding transaction ends.
	// Must be called on a store bound to a transaction via WithTx.
	// Returns ErrCardNotFound if the card does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByCollection returns every card of a collection ordered by creation time.
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error)

	// ListDue returns cards of the collection with DueAt <= now, ordered by
	// DueAt ascending and then by ID, truncated to limit. The caller is
	// expected to pass a normalized limit.
	ListDue(ctx context.Context, collectionID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// UpdateContent persists the card's Front, Back and UpdatedAt.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateContent(ctx context.Context, card *domain.Card) error

	// UpdateScheduling replaces the card's scheduling state, but only if the
	// stored reps still equal expectedReps. Reps grows by one on every review,
	// so it doubles as a version counter.
	// Returns ErrConflict when the row changed since it was read and
	// ErrCardNotFound when it does not exist.
	UpdateScheduling(
		ctx context.Context,
		id uuid.UUID,
		expectedReps int,
		state domain.SchedulingState,
		updatedAt time.Time,
	) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       txCards := cardStore.WithTx(tx)
	//       card, err := txCards.GetForUpdate(ctx, id)
	//       ...
	//   })
	WithTx(tx *sql.Tx) CardStore
}
