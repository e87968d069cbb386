package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

const cardColumns = `id, collection_id, front, back, state, due_at, last_interval,
	ease_factor, reps, lapses, created_at, updated_at`

// CardStore implements store.CardStore on SQLite.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a SQLite CardStore. If logger is nil, a default logger is used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		// ALLOW-PANIC: a nil database is a wiring bug
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	sc := card.Scheduling
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.CollectionID, card.Front, card.Back,
		string(sc.State), sc.DueAt.UnixMilli(), sc.LastInterval,
		sc.EaseFactor, sc.Reps, sc.Lapses,
		card.CreatedAt.UnixMilli(), card.UpdatedAt.UnixMilli(),
	)
	if err == nil {
		return nil
	}

	if isConstraint(err) {
		var exists bool
		if qerr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM collections WHERE id = ?)`, card.CollectionID,
		).Scan(&exists); qerr == nil && !exists {
			return store.ErrCollectionNotFound
		}
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert card",
		slog.String("card_id", card.ID.String()),
		slog.String("error", err.Error()))
	return MapError(err)
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}
	return card, nil
}

// GetForUpdate implements store.CardStore.GetForUpdate
// SQLite has no row locks; the transaction's write lock plus the reps
// check in UpdateScheduling give the same guarantee.
func (s *CardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.GetByID(ctx, id)
}

// ListByCollection implements store.CardStore.ListByCollection
func (s *CardStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error) {
	return s.list(ctx,
		`SELECT `+cardColumns+` FROM cards
		WHERE collection_id = ?
		ORDER BY created_at ASC, id ASC`,
		collectionID)
}

// ListDue implements store.CardStore.ListDue
func (s *CardStore) ListDue(
	ctx context.Context,
	collectionID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	return s.list(ctx,
		`SELECT `+cardColumns+` FROM cards
		WHERE collection_id = ? AND due_at <= ?
		ORDER BY due_at ASC, id ASC
		LIMIT ?`,
		collectionID, now.UnixMilli(), limit)
}

func (s *CardStore) list(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// UpdateContent implements store.CardStore.UpdateContent
func (s *CardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET front = ?, back = ?, updated_at = ? WHERE id = ?`,
		card.Front, card.Back, card.UpdatedAt.UnixMilli(), card.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrCardNotFound)
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
func (s *CardStore) UpdateScheduling(
	ctx context.Context,
	id uuid.UUID,
	expectedReps int,
	state domain.SchedulingState,
	updatedAt time.Time,
) error {
	if err := state.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards
		SET state = ?, due_at = ?, last_interval = ?, ease_factor = ?,
			reps = ?, lapses = ?, updated_at = ?
		WHERE id = ? AND reps = ?`,
		string(state.State), state.DueAt.UnixMilli(), state.LastInterval, state.EaseFactor,
		state.Reps, state.Lapses, updatedAt.UnixMilli(),
		id, expectedReps,
	)
	if err != nil {
		return MapError(err)
	}

	if checkRowsAffected(result, store.ErrCardNotFound) == nil {
		return nil
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Warn("scheduling update lost a race",
		slog.String("card_id", id.String()),
		slog.Int("expected_reps", expectedReps))
	return fmt.Errorf("%w: card %s", store.ErrConflict, id)
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrCardNotFound)
}

// WithTx implements store.CardStore.WithTx
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card                        domain.Card
		state                       string
		dueAt, createdAt, updatedAt int64
	)

	if err := row.Scan(
		&card.ID, &card.CollectionID, &card.Front, &card.Back,
		&state, &dueAt, &card.Scheduling.LastInterval,
		&card.Scheduling.EaseFactor, &card.Scheduling.Reps, &card.Scheduling.Lapses,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	card.Scheduling.State = domain.CardState(state)
	card.Scheduling.DueAt = time.UnixMilli(dueAt).UTC()
	card.CreatedAt = time.UnixMilli(createdAt).UTC()
	card.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &card, nil
}
