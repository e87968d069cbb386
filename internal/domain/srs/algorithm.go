package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// Advance computes the scheduling state that follows a review of current
// with the given rating at time now.
//
// It is a pure function: current is never modified, the clock is never read,
// and the same inputs always produce the same output. Either a complete new
// state is returned or an error, never a partially updated state.
//
// Errors:
//   - domain.ErrInvalidRating when rating is not Again, Hard, Good or Easy
//   - domain.ErrInvariantViolation when current breaks a scheduling invariant
//
// Algorithm (simplified SM-2):
//   - Again: interval resets to 0, ease drops by 0.20, state becomes relearning,
//     lapses increments. The card is due again in 10 minutes.
//   - Hard/Good/Easy: ease moves by -0.15/0/+0.15, the interval steps 0 → 1 → 3
//     (4 on Easy) and then grows as ceil(interval × ease × bonus), where bonus
//     is 1.3 on Easy, up to MaxInterval. State becomes review.
//   - reps increments on every review.
func Advance(current domain.SchedulingState, rating domain.Rating, now time.Time) (domain.SchedulingState, error) {
	if !rating.IsValid() {
		return domain.SchedulingState{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	if err := current.Validate(); err != nil {
		return domain.SchedulingState{}, err
	}

	next := domain.SchedulingState{
		Reps:   current.Reps + 1,
		Lapses: current.Lapses,
	}

	if rating == domain.RatingAgain {
		next.State = domain.CardStateRelearning
		next.LastInterval = 0
		next.EaseFactor = calculateNewEaseFactor(current.EaseFactor, -AgainEasePenalty)
		next.Lapses++
	} else {
		next.State = domain.CardStateReview
		next.EaseFactor = calculateNewEaseFactor(current.EaseFactor, easeAdjustment(rating))
		next.LastInterval = calculateNewInterval(current.LastInterval, next.EaseFactor, rating)
	}

	next.DueAt = calculateNextDueAt(next.LastInterval, now)

	return next, nil
}

// calculateNewEaseFactor applies delta and clamps the result at MinEaseFactor.
// Rounding to easePrecision strips binary drift such as 2.3499999999999996
// and leaves any stored precision intact.
func calculateNewEaseFactor(currentEF, delta float64) float64 {
	return math.Max(MinEaseFactor, roundTo(currentEF+delta, easePrecision))
}

// calculateNewInterval returns the interval in days for a passing review.
// newEF is the ease factor already adjusted for this review.
func calculateNewInterval(lastInterval, newEF float64, rating domain.Rating) float64 {
	switch lastInterval {
	case 0:
		return FirstInterval
	case 1:
		if rating == domain.RatingEasy {
			return SecondIntervalEasy
		}
		return SecondInterval
	}

	bonus := 1.0
	if rating == domain.RatingEasy {
		bonus = EasyIntervalBonus
	}

	// Round before the ceiling so 20.000000000000004 stays 20.
	return math.Min(MaxInterval, math.Ceil(roundTo(lastInterval*newEF*bonus, 6)))
}

// calculateNextDueAt projects the interval onto the clock. A zero interval
// means relearning, due after RelearnDelay rather than immediately.
func calculateNextDueAt(interval float64, now time.Time) time.Time {
	base := domain.TruncateMillis(now)
	if interval == 0 {
		return base.Add(RelearnDelay)
	}
	return addDays(base, interval)
}

// addDays moves t forward by days in whole milliseconds. time.Duration tops
// out near 292 years, so the offset is never built as one. days is capped at
// MaxInterval and the result at MaxDueAt.
func addDays(t time.Time, days float64) time.Time {
	days = math.Min(days, MaxInterval)
	offset := int64(math.Round(days * float64(Day.Milliseconds())))

	ms := t.UnixMilli()
	if maxMs := MaxDueAt.UnixMilli(); ms > maxMs-offset {
		return MaxDueAt
	}
	return time.UnixMilli(ms + offset).UTC()
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
