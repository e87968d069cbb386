package postgres

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

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: a nil database is a wiring bug
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	sc := card.Scheduling
	_, err := s.db.ExecContext(ctx, query,
		card.ID, card.CollectionID, card.Front, card.Back,
		string(sc.State), sc.DueAt.UnixMilli(), sc.LastInterval,
		sc.EaseFactor, sc.Reps, sc.Lapses,
		card.CreatedAt.UnixMilli(), card.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrCollectionNotFound
		}
		log.Error("failed to insert card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("collection_id", card.CollectionID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForUpdate implements store.CardStore.GetForUpdate
// The row stays locked until the surrounding transaction commits or rolls back.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresCardStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load card",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return card, nil
}

// ListByCollection implements store.CardStore.ListByCollection
func (s *PostgresCardStore) ListByCollection(
	ctx context.Context,
	collectionID uuid.UUID,
) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE collection_id = $1
		ORDER BY created_at ASC, id ASC`
	return s.list(ctx, query, collectionID)
}

// ListDue implements store.CardStore.ListDue
func (s *PostgresCardStore) ListDue(
	ctx context.Context,
	collectionID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE collection_id = $1 AND due_at <= $2
		ORDER BY due_at ASC, id ASC
		LIMIT $3`
	return s.list(ctx, query, collectionID, now.UnixMilli(), limit)
}

func (s *PostgresCardStore) list(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query cards",
			slog.String("error", err.Error()))
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
func (s *PostgresCardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET front = $1, back = $2, updated_at = $3 WHERE id = $4`,
		card.Front, card.Back, card.UpdatedAt.UnixMilli(), card.ID,
	)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}
	return nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
func (s *PostgresCardStore) UpdateScheduling(
	ctx context.Context,
	id uuid.UUID,
	expectedReps int,
	state domain.SchedulingState,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards
		SET state = $1, due_at = $2, last_interval = $3, ease_factor = $4,
			reps = $5, lapses = $6, updated_at = $7
		WHERE id = $8 AND reps = $9`,
		string(state.State), state.DueAt.UnixMilli(), state.LastInterval, state.EaseFactor,
		state.Reps, state.Lapses, updatedAt.UnixMilli(),
		id, expectedReps,
	)
	if err != nil {
		log.Error("failed to update card scheduling",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "card"); err == nil {
		return nil
	}

	// Nothing matched: either the card is gone or reps moved on.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrCardNotFound
	}

	log.Warn("scheduling update lost a race",
		slog.String("card_id", id.String()),
		slog.Int("expected_reps", expectedReps))
	return fmt.Errorf("%w: card %s", store.ErrConflict, id)
}

// Delete implements store.CardStore.Delete
// Cards own no dependent rows, so a single DELETE suffices.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}
	return nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card                       domain.Card
		state                      string
		dueAt, createdAt, updateAt int64
	)

	err := row.Scan(
		&card.ID, &card.CollectionID, &card.Front, &card.Back,
		&state, &dueAt, &card.Scheduling.LastInterval,
		&card.Scheduling.EaseFactor, &card.Scheduling.Reps, &card.Scheduling.Lapses,
		&createdAt, &updateAt,
	)
	if err != nil {
		return nil, err
	}

	card.Scheduling.State = domain.CardState(state)
	card.Scheduling.DueAt = time.UnixMilli(dueAt).UTC()
	card.CreatedAt = time.UnixMilli(createdAt).UTC()
	card.UpdatedAt = time.UnixMilli(updateAt).UTC()
	return &card, nil
}
