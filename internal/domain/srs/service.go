package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// ErrInvalidDays is returned when a postpone request is shorter than one day.
var ErrInvalidDays = errors.New("postpone days must be at least 1")

// Service defines the interface for SRS algorithm operations.
// Implementations must stay pure: no I/O and no clock reads.
type Service interface {
	// CalculateNextReview computes the scheduling state after a review.
	CalculateNextReview(
		current domain.SchedulingState,
		rating domain.Rating,
		now time.Time,
	) (domain.SchedulingState, error)

	// PostponeReview pushes the due time forward by a number of days
	// without counting as a review.
	PostponeReview(
		current domain.SchedulingState,
		days int,
		now time.Time,
	) (domain.SchedulingState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct{}

// NewDefaultService creates a new SRS service using the package policy.
func NewDefaultService() Service {
	return &defaultService{}
}

// CalculateNextReview delegates to Advance.
func (s *defaultService) CalculateNextReview(
	current domain.SchedulingState,
	rating domain.Rating,
	now time.Time,
) (domain.SchedulingState, error) {
	return Advance(current, rating, now)
}

// PostponeReview moves the due time to max(dueAt, now) plus days, never past
// MaxDueAt. Counters, interval and ease are untouched.
func (s *defaultService) PostponeReview(
	current domain.SchedulingState,
	days int,
	now time.Time,
) (domain.SchedulingState, error) {
	if days < 1 {
		return domain.SchedulingState{}, ErrInvalidDays
	}

	if err := current.Validate(); err != nil {
		return domain.SchedulingState{}, err
	}

	base := domain.TruncateMillis(now)
	if !current.IsDue(base) {
		base = domain.TruncateMillis(current.DueAt)
	}

	next := current
	next.DueAt = addDays(base, float64(days))
	return next, nil
}
