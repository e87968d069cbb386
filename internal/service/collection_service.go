package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

// CollectionService manages a user's collections.
type CollectionService interface {
	// CreateCollection creates an empty collection owned by userID.
	CreateCollection(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Collection, error)

	// GetCollection returns the collection if userID owns it.
	GetCollection(ctx context.Context, userID, collectionID uuid.UUID) (*domain.Collection, error)

	// ListCollections returns the user's collections, newest first.
	ListCollections(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error)

	// DeleteCollection deletes the collection and every card in it.
	DeleteCollection(ctx context.Context, userID, collectionID uuid.UUID) error
}

type collectionServiceImpl struct {
	collections store.CollectionStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewCollectionService creates a new CollectionService.
// It returns an error if the store is nil.
func NewCollectionService(collections store.CollectionStore, logger *slog.Logger) (CollectionService, error) {
	if collections == nil {
		return nil, domain.NewValidationError("collections", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &collectionServiceImpl{
		collections: collections,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "collection_service")),
	}, nil
}

// CreateCollection implements CollectionService.CreateCollection
func (s *collectionServiceImpl) CreateCollection(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
) (*domain.Collection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := domain.NewCollection(userID, title, description, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.collections.Create(ctx, collection); err != nil {
		log.Error("failed to create collection",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCollectionServiceError("create_collection", "failed to save collection", err)
	}

	log.Info("collection created",
		slog.String("collection_id", collection.ID.String()),
		slog.String("user_id", userID.String()))
	return collection, nil
}

// GetCollection implements CollectionService.GetCollection
func (s *collectionServiceImpl) GetCollection(
	ctx context.Context,
	userID, collectionID uuid.UUID,
) (*domain.Collection, error) {
	return ownedCollection(ctx, s.collections, userID, collectionID)
}

// ListCollections implements CollectionService.ListCollections
func (s *collectionServiceImpl) ListCollections(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	collections, err := s.collections.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list collections",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCollectionServiceError("list_collections", "failed to list collections", err)
	}
	return collections, nil
}

// DeleteCollection implements CollectionService.DeleteCollection
func (s *collectionServiceImpl) DeleteCollection(ctx context.Context, userID, collectionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := ownedCollection(ctx, s.collections, userID, collectionID); err != nil {
		return err
	}

	if err := s.collections.Delete(ctx, collectionID); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return err
		}
		log.Error("failed to delete collection",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID.String()))
		return NewCollectionServiceError("delete_collection", "failed to delete collection", err)
	}

	log.Info("collection deleted", slog.String("collection_id", collectionID.String()))
	return nil
}

// ownedCollection loads a collection and checks that userID owns it.
func ownedCollection(
	ctx context.Context,
	collections store.CollectionStore,
	userID, collectionID uuid.UUID,
) (*domain.Collection, error) {
	collection, err := collections.GetByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, err
		}
		return nil, NewCollectionServiceError("get_collection", "failed to load collection", err)
	}
	if !collection.IsOwnedBy(userID) {
		logger.FromContext(ctx).Warn("user does not own collection",
			slog.String("user_id", userID.String()),
			slog.String("collection_id", collectionID.String()))
		return nil, fmt.Errorf("%w: collection %s", ErrNotOwned, collectionID)
	}
	return collection, nil
}
