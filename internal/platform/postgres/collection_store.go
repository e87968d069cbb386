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

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of the CollectionStore interface.
func NewPostgresCollectionStore(db store.DBTX, logger *slog.Logger) *PostgresCollectionStore {
	if db == nil {
		// ALLOW-PANIC: a nil database is a wiring bug
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// Create implements store.CollectionStore.Create
func (s *PostgresCollectionStore) Create(ctx context.Context, c *domain.Collection) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id, user_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.Title, c.Description, c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert collection",
			slog.String("collection_id", c.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.CollectionStore.GetByID
func (s *PostgresCollectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, err := scanCollection(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, created_at FROM collections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCollectionNotFound
		}
		return nil, MapError(err)
	}
	return c, nil
}

// ListByUser implements store.CollectionStore.ListByUser
func (s *PostgresCollectionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at FROM collections
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	collections := make([]*domain.Collection, 0)
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, MapError(err)
		}
		collections = append(collections, c)
	}
	return collections, MapError(rows.Err())
}

// Delete implements store.CollectionStore.Delete
// Cards are removed by the ON DELETE CASCADE foreign key.
func (s *PostgresCollectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "collection"); err != nil {
		return store.ErrCollectionNotFound
	}
	return nil
}

// WithTx implements store.CollectionStore.WithTx
func (s *PostgresCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return &PostgresCollectionStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanCollection(row rowScanner) (*domain.Collection, error) {
	var (
		c         domain.Collection
		createdAt int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &c, nil
}
