package domain

import (
	"fmt"
	"time"
)

// CardState is the lifecycle phase of a card in the review schedule.
type CardState string

// Possible card states
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// IsValid reports whether s is one of the known card states.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	default:
		return false
	}
}

// Rating is the user's assessment of how well a card was recalled.
type Rating int

// Possible rating values, in ascending order of recall quality.
const (
	RatingAgain Rating = iota + 1 // Forgot the card.
	RatingHard                    // Recalled with significant difficulty.
	RatingGood                    // Recalled with some effort.
	RatingEasy                    // Recalled effortlessly.
)

var ratingNames = [...]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating, or "rating(n)" for
// values outside the known range.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// ParseRating converts an integer rating into a Rating.
// Returns ErrInvalidRating when n is outside 1..4.
func ParseRating(n int) (Rating, error) {
	r := Rating(n)
	if !r.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, n)
	}
	return r, nil
}

// DefaultEaseFactor is the ease factor given to every new card.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor the ease factor never drops below.
const MinEaseFactor = 1.3

// SchedulingState is the review-schedule portion of a card. It is a plain
// value: the scheduler never mutates one, it returns a new one.
type SchedulingState struct {
	State        CardState `json:"state"`
	DueAt        time.Time `json:"dueAt"`
	LastInterval float64   `json:"lastInterval"` // Days
	EaseFactor   float64   `json:"easeFactor"`
	Reps         int       `json:"reps"`
	Lapses       int       `json:"lapses"`
}

// NewSchedulingState returns the state every freshly created card starts
// with. The card is due immediately.
func NewSchedulingState(now time.Time) SchedulingState {
	return SchedulingState{
		State:        CardStateNew,
		DueAt:        TruncateMillis(now),
		LastInterval: 0,
		EaseFactor:   DefaultEaseFactor,
		Reps:         0,
		Lapses:       0,
	}
}

// Validate checks the invariants every persisted scheduling state must hold.
// Any failure wraps ErrInvariantViolation.
func (s SchedulingState) Validate() error {
	if !s.State.IsValid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvariantViolation, s.State)
	}
	if s.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.4f below %.1f", ErrInvariantViolation, s.EaseFactor, MinEaseFactor)
	}
	if s.LastInterval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvariantViolation, s.LastInterval)
	}
	if s.Reps < 0 || s.Lapses < 0 {
		return fmt.Errorf("%w: negative counters reps=%d lapses=%d", ErrInvariantViolation, s.Reps, s.Lapses)
	}
	if s.LastInterval == 0 && s.State == CardStateReview {
		return fmt.Errorf("%w: review card with zero interval", ErrInvariantViolation)
	}
	if s.LastInterval > 0 && s.State == CardStateNew {
		return fmt.Errorf("%w: new card with interval %v", ErrInvariantViolation, s.LastInterval)
	}
	if s.Lapses > s.Reps {
		return fmt.Errorf("%w: lapses %d exceed reps %d", ErrInvariantViolation, s.Lapses, s.Reps)
	}
	return nil
}

// IsDue reports whether the card is eligible for review at now.
func (s SchedulingState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// TruncateMillis drops sub-millisecond precision and normalizes to UTC,
// matching what the stores persist.
func TruncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
