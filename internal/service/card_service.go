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

// CardService manages card content. Scheduling changes go through
// card_review.CardReviewService instead.
type CardService interface {
	// CreateCard adds a new card, due immediately, to a collection userID owns.
	CreateCard(ctx context.Context, userID, collectionID uuid.UUID, front, back string) (*domain.Card, error)

	// GetCard retrieves a card by its ID
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// ListCards returns every card in the collection, oldest first.
	ListCards(ctx context.Context, userID, collectionID uuid.UUID) ([]*domain.Card, error)

	// UpdateCard replaces the non-nil sides of the card.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, front, back *string) (*domain.Card, error)

	// DeleteCard removes the card.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

type cardServiceImpl struct {
	cards       store.CardStore
	collections store.CollectionStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewCardService creates a new CardService
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cards store.CardStore,
	collections store.CollectionStore,
	logger *slog.Logger,
) (CardService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if collections == nil {
		return nil, domain.NewValidationError("collections", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:       cards,
		collections: collections,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := ownedCollection(ctx, s.collections, userID, collectionID); err != nil {
		return nil, err
	}

	card, err := domain.NewCard(collectionID, front, back, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.cards.Create(ctx, card); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, err
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID.String()))
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("collection_id", collectionID.String()))
	return card, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error) {
	return s.ownedCard(ctx, userID, cardID)
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(ctx context.Context, userID, collectionID uuid.UUID) ([]*domain.Card, error) {
	if _, err := ownedCollection(ctx, s.collections, userID, collectionID); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListByCollection(ctx, collectionID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID.String()))
		return nil, NewCardServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	front, back *string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if err := card.UpdateContent(front, back, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.cards.UpdateContent(ctx, card); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, err
		}
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("update_card", "failed to save card", err)
	}
	return card, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if _, err := s.ownedCard(ctx, userID, cardID); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}
	return nil
}

func (s *cardServiceImpl) ownedCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, err
		}
		return nil, NewCardServiceError("get_card", "failed to retrieve card", err)
	}

	if _, err := ownedCollection(ctx, s.collections, userID, card.CollectionID); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, store.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}
