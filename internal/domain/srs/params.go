package srs

import (
	"time"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// Scheduling policy. These values define the review cadence of every
// existing card; changing any of them reschedules the whole deck.
const (
	// MinEaseFactor is the floor enforced on every transition.
	MinEaseFactor = domain.MinEaseFactor

	// DefaultEaseFactor is the ease factor of a card that was never reviewed.
	DefaultEaseFactor = domain.DefaultEaseFactor

	// AgainEasePenalty is subtracted from the ease factor on a failed review.
	AgainEasePenalty = 0.20

	// HardEasePenalty is subtracted from the ease factor on a Hard review.
	HardEasePenalty = 0.15

	// EasyEaseBonus is added to the ease factor on an Easy review.
	EasyEaseBonus = 0.15

	// EasyIntervalBonus multiplies steady-state growth on an Easy review.
	EasyIntervalBonus = 1.3

	// FirstInterval is the interval in days after the first successful review.
	FirstInterval = 1

	// SecondInterval is the interval in days after the second successful review.
	SecondInterval = 3

	// SecondIntervalEasy replaces SecondInterval when the review was Easy.
	SecondIntervalEasy = 4

	// RelearnDelay keeps failed cards in near-term rotation.
	RelearnDelay = 10 * time.Minute

	// Day is one interval unit. It is pure elapsed time, no calendar math.
	Day = 24 * time.Hour

	// MaxInterval caps interval growth at 100 years.
	MaxInterval = 36500

	// easePrecision is the number of decimals an ease factor is rounded to.
	easePrecision = 9
)

// MaxDueAt is the latest due time ever scheduled. Later times cannot be
// encoded as RFC 3339 and so would break event payloads.
var MaxDueAt = time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)

// easeAdjustment returns the ease factor delta applied for a passing rating.
func easeAdjustment(rating domain.Rating) float64 {
	switch rating {
	case domain.RatingHard:
		return -HardEasePenalty
	case domain.RatingEasy:
		return EasyEaseBonus
	default:
		return 0
	}
}
