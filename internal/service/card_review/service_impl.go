package card_review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/domain/srs"
	"github.com/phrazzld/scry-decks/internal/events"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Option configures a cardReviewServiceImpl.
type Option func(*cardReviewServiceImpl)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(s *cardReviewServiceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithEventEmitter publishes a card.reviewed event after every committed review.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *cardReviewServiceImpl) {
		s.emitter = emitter
	}
}

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

type cardReviewServiceImpl struct {
	db          *sql.DB
	cards       store.CardStore
	collections store.CollectionStore
	srsService  srs.Service
	emitter     events.EventEmitter
	clock       Clock
	logger      *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	db *sql.DB,
	cards store.CardStore,
	collections store.CollectionStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) CardReviewService {
	if db == nil {
		// ALLOW-PANIC: constructor invariants
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if collections == nil {
		panic("collections cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		db:          db,
		cards:       cards,
		collections: collections,
		srsService:  srsService,
		clock:       time.Now,
		logger:      logger.With(slog.String("component", "card_review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rating domain.Rating,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	if !rating.IsValid() {
		log.Warn("invalid review rating", slog.Int("rating", int(rating)))
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	now := s.clock().UTC()
	var result *ReviewResult
	var collectionID uuid.UUID

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)

		card, err := s.loadOwnedCard(ctx, tx, userID, cardID)
		if err != nil {
			return err
		}
		collectionID = card.CollectionID

		next, err := s.srsService.CalculateNextReview(card.Scheduling, rating, now)
		if err != nil {
			return err
		}

		if err := cards.UpdateScheduling(ctx, card.ID, card.Scheduling.Reps, next, now); err != nil {
			return err
		}

		previous := card.Scheduling
		card.Scheduling = next
		card.UpdatedAt = domain.TruncateMillis(now)
		result = &ReviewResult{
			Card:             card,
			Previous:         previous,
			NextReviewInDays: next.LastInterval,
		}
		return nil
	})
	if err != nil {
		return nil, s.reviewError(log, err)
	}

	log.Debug("review recorded",
		slog.String("rating", rating.String()),
		slog.String("state", string(result.Card.Scheduling.State)),
		slog.Float64("ease_factor", result.Card.Scheduling.EaseFactor),
		slog.Float64("interval_days", result.NextReviewInDays),
		slog.Time("due_at", result.Card.Scheduling.DueAt))

	s.emitReviewed(ctx, log, userID, collectionID, rating, result, now)
	return result, nil
}

// reviewError classifies a failed review. Expected conditions pass through
// unchanged; a broken invariant is logged loudly since it means stored data
// or a caller is wrong.
func (s *cardReviewServiceImpl) reviewError(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		log.Info("review lost to a concurrent review")
		return fmt.Errorf("%w: %w", ErrReviewConflict, err)
	case errors.Is(err, domain.ErrInvariantViolation):
		log.Error("stored scheduling state violates invariants",
			slog.String("error", err.Error()))
		return NewSubmitReviewError("corrupt scheduling state", err)
	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, ErrCardNotOwned),
		errors.Is(err, domain.ErrInvalidRating):
		return err
	}

	log.Error("failed to submit review", slog.String("error", err.Error()))
	return NewSubmitReviewError("failed to submit review", err)
}

func (s *cardReviewServiceImpl) emitReviewed(
	ctx context.Context,
	log *slog.Logger,
	userID, collectionID uuid.UUID,
	rating domain.Rating,
	result *ReviewResult,
	now time.Time,
) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewCardReviewedEvent(events.CardReviewed{
		CardID:       result.Card.ID,
		CollectionID: collectionID,
		UserID:       userID,
		Rating:       rating,
		Previous:     result.Previous,
		Next:         result.Card.Scheduling,
		ReviewedAt:   domain.TruncateMillis(now),
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		// The review is committed; a lost event must not undo it.
		log.Error("failed to emit card reviewed event", slog.String("error", err.Error()))
	}
}

// loadOwnedCard locks the card for the rest of tx and checks that userID
// owns its collection.
func (s *cardReviewServiceImpl) loadOwnedCard(
	ctx context.Context,
	tx *sql.Tx,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cards.WithTx(tx).GetForUpdate(ctx, cardID)
	if err != nil {
		return nil, err
	}

	collection, err := s.collections.WithTx(tx).GetByID(ctx, card.CollectionID)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			// Cards cascade with their collection, so this only happens
			// when the collection is deleted mid-request.
			return nil, store.ErrCardNotFound
		}
		return nil, err
	}
	if !collection.IsOwnedBy(userID) {
		return nil, ErrCardNotOwned
	}
	return card, nil
}

// GetDueCards implements CardReviewService.GetDueCards.
func (s *cardReviewServiceImpl) GetDueCards(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("collection_id", collectionID.String()))

	collection, err := s.collections.GetByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, err
		}
		log.Error("failed to load collection", slog.String("error", err.Error()))
		return nil, NewGetDueCardsError("failed to load collection", err)
	}
	if !collection.IsOwnedBy(userID) {
		log.Warn("user does not own collection",
			slog.String("owner_id", collection.UserID.String()))
		return nil, ErrCollectionNotOwned
	}

	cards, err := s.SelectDue(ctx, collectionID, s.clock(), limit)
	if err != nil {
		log.Error("failed to select due cards", slog.String("error", err.Error()))
		return nil, NewGetDueCardsError("failed to select due cards", err)
	}

	log.Debug("selected due cards", slog.Int("count", len(cards)))
	return cards, nil
}

// SelectDue implements CardReviewService.SelectDue.
func (s *cardReviewServiceImpl) SelectDue(
	ctx context.Context,
	collectionID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	return s.cards.ListDue(ctx, collectionID, domain.TruncateMillis(now), store.NormalizeDueLimit(limit))
}

// PostponeCard implements CardReviewService.PostponeCard.
func (s *cardReviewServiceImpl) PostponeCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	now := s.clock().UTC()
	var card *domain.Card

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		c, err := s.loadOwnedCard(ctx, tx, userID, cardID)
		if err != nil {
			return err
		}

		next, err := s.srsService.PostponeReview(c.Scheduling, days, now)
		if err != nil {
			return err
		}

		if err := s.cards.WithTx(tx).UpdateScheduling(ctx, c.ID, c.Scheduling.Reps, next, now); err != nil {
			return err
		}

		c.Scheduling = next
		c.UpdatedAt = domain.TruncateMillis(now)
		card = c
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, srs.ErrInvalidDays),
			errors.Is(err, store.ErrCardNotFound),
			errors.Is(err, ErrCardNotOwned):
			return nil, err
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("%w: %w", ErrReviewConflict, err)
		}
		log.Error("failed to postpone card", slog.String("error", err.Error()))
		return nil, NewPostponeCardError("failed to postpone card", err)
	}

	log.Debug("card postponed",
		slog.Int("days", days),
		slog.Time("due_at", card.Scheduling.DueAt))
	return card, nil
}
