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
	"github.com/phrazzld/scry-decks/internal/store"
)

// CollectionStore implements store.CollectionStore on SQLite.
type CollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCollectionStore creates a SQLite CollectionStore.
func NewCollectionStore(db store.DBTX, logger *slog.Logger) *CollectionStore {
	if db == nil {
		// ALLOW-PANIC: a nil database is a wiring bug
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

var _ store.CollectionStore = (*CollectionStore)(nil)

// Create implements store.CollectionStore.Create
func (s *CollectionStore) Create(ctx context.Context, c *domain.Collection) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id, user_id, title, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.Description, c.CreatedAt.UnixMilli(),
	)
	return MapError(err)
}

// GetByID implements store.CollectionStore.GetByID
func (s *CollectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, err := scanCollection(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, created_at FROM collections WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCollectionNotFound
		}
		return nil, MapError(err)
	}
	return c, nil
}

// ListByUser implements store.CollectionStore.ListByUser
func (s *CollectionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at FROM collections
		WHERE user_id = ?
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
func (s *CollectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrCollectionNotFound)
}

// WithTx implements store.CollectionStore.WithTx
func (s *CollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return &CollectionStore{db: tx, logger: s.logger}
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
