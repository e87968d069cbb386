package card_review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/service"
)

// ReviewResult is the outcome of a committed review.
type ReviewResult struct {
	// Card is the reviewed card with its new scheduling state.
	Card *domain.Card

	// Previous is the scheduling state the review started from.
	Previous domain.SchedulingState

	// NextReviewInDays is the new interval in days; 0 after a lapse, when
	// the card comes back within minutes.
	NextReviewInDays float64
}

// CardReviewService runs review sessions: it selects due cards and applies
// ratings to them through the scheduler.
type CardReviewService interface {
	// SubmitReview applies rating to the card and persists the new schedule.
	//
	// The card is read, rescheduled and written in one transaction; the write
	// only succeeds if no other review of the card committed in between.
	//
	// Errors:
	//   - domain.ErrInvalidRating when rating is outside Again..Easy
	//   - store.ErrCardNotFound when the card does not exist
	//   - ErrCardNotOwned when the card's collection belongs to someone else
	//   - ErrReviewConflict when a concurrent review of the card won
	//   - domain.ErrInvariantViolation when the stored schedule is corrupt
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, rating domain.Rating) (*ReviewResult, error)

	// GetDueCards returns up to limit cards of the collection that are due
	// now, oldest due first. limit <= 0 means the default page size.
	GetDueCards(ctx context.Context, userID, collectionID uuid.UUID, limit int) ([]*domain.Card, error)

	// SelectDue returns up to limit cards of the collection with dueAt <= now,
	// ordered by dueAt then id. It reserves nothing: two sessions may
	// receive the same cards.
	SelectDue(ctx context.Context, collectionID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// PostponeCard pushes the card's due date back by whole days without
	// touching its learning progress.
	PostponeCard(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.Card, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotOwned indicates that the card belongs to another user's collection.
	ErrCardNotOwned = fmt.Errorf("%w: card", service.ErrNotOwned)

	// ErrCollectionNotOwned indicates that the collection belongs to another user.
	ErrCollectionNotOwned = fmt.Errorf("%w: collection", service.ErrNotOwned)

	// ErrReviewConflict indicates the card changed between read and write.
	ErrReviewConflict = errors.New("card was reviewed concurrently")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "get_due_cards")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_review", Message: message, Err: err}
}

// NewGetDueCardsError returns a new ServiceError for the get_due_cards operation.
func NewGetDueCardsError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "get_due_cards", Message: message, Err: err}
}

// NewPostponeCardError returns a new ServiceError for the postpone_card operation.
func NewPostponeCardError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "postpone_card", Message: message, Err: err}
}
