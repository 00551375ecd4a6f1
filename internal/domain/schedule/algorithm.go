package schedule

import (
	"math"
	"time"

	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// calculateBaseInterval determines the pre-jitter interval in days for a
// review, given the score and the review count before this review.
//
// The policy is a deliberately simple step function rather than a full
// forgetting-curve model:
//   - "Again" (failed recall): hard reset to params.AgainIntervalDays,
//     ignoring the review count entirely
//   - "Hard": max(1, floor(count * 0.5))
//   - "Good": max(1, count * 2)
//   - "Easy": max(1, count * 4)
//
// The multiplier base is the count *before* this review's increment, so
// the very first successful review of a memory always lands on the floor
// value regardless of score. Intervals only start growing once a memory
// has survived multiple reviews. This conservative ramp-up is an
// intentional property of the policy, not an off-by-one.
func calculateBaseInterval(
	score domain.ReviewScore,
	reviewCountBefore int,
	params *Params,
) int {
	if score == domain.ScoreAgain {
		return params.AgainIntervalDays
	}

	days := int(math.Floor(float64(reviewCountBefore) * params.IntervalMultiplier[score]))
	if days < params.MinIntervalDays {
		days = params.MinIntervalDays
	}
	return days
}

// applyJitter perturbs an interval multiplicatively by a uniformly
// distributed factor in [1-JitterFraction, 1+JitterFraction), then floors
// the result and clamps it to MinIntervalDays.
//
// Jitter prevents memories captured at the same time from clustering on
// identical future review dates, which would create uneven daily review
// load. It applies uniformly to every score, including "Again"; because
// the Again interval is 1 day and the floor clamp is 1 day, Again reviews
// always come out at exactly 1 day regardless of the random draw.
func applyJitter(days int, params *Params, src RandomSource) int {
	spread := (2*src.Float64() - 1) * params.JitterFraction
	jittered := int(math.Floor(float64(days) * (1 + spread)))
	if jittered < params.MinIntervalDays {
		jittered = params.MinIntervalDays
	}
	return jittered
}

// calculateNextState produces the updated review state after applying a
// graded outcome at the given instant.
//
// It follows the immutable update pattern: the input state is never
// modified, and the history slice is copied before appending so that the
// caller's view of prior records cannot be aliased by the new state.
//
// Behavior:
//   - Increments the review count by exactly one
//   - Records the outcome's score as the last score
//   - Schedules the next review at now plus the jittered interval
//   - Appends one ReviewRecord carrying the timestamp, score, granted
//     interval, and the outcome's free-text notes
func calculateNextState(
	state *domain.MemoryReviewState,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
	src RandomSource,
) (*domain.MemoryReviewState, int) {
	base := calculateBaseInterval(outcome.Score, state.ReviewCount, params)
	interval := applyJitter(base, params, src)

	history := make([]domain.ReviewRecord, len(state.History), len(state.History)+1)
	copy(history, state.History)
	history = append(history, domain.ReviewRecord{
		ReviewedAt:   now,
		Score:        outcome.Score,
		IntervalDays: interval,
		Notes:        outcome.Notes,
	})

	newState := &domain.MemoryReviewState{
		MemoryID:     state.MemoryID,
		UserID:       state.UserID,
		ReviewCount:  state.ReviewCount + 1,
		LastScore:    outcome.Score,
		NextReviewAt: now.AddDate(0, 0, interval),
		History:      history,
		CreatedAt:    state.CreatedAt,
		UpdatedAt:    now,
	}

	return newState, interval
}
