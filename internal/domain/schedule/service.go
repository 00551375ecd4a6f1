package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// Common errors
var (
	ErrNilState     = errors.New("memory review state cannot be nil")
	ErrInvalidScore = errors.New("invalid review score")
	ErrInvalidState = errors.New("malformed review state")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Service defines the interface for spaced-repetition scheduling operations.
// The implementation is pure computation: no I/O, no persistence, no shared
// mutable state beyond the injected randomness source. It is safe to call
// concurrently with different inputs.
type Service interface {
	// ComputeInterval returns the jittered interval in days for a review
	// with the given score, using the review count before this review's
	// increment as the multiplier base.
	ComputeInterval(score domain.ReviewScore, reviewCountBefore int) (int, error)

	// ApplyReview computes new state from a graded review outcome.
	// The returned state is a new value; the input is never mutated.
	ApplyReview(
		state *domain.MemoryReviewState,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.MemoryReviewState, error)

	// IsDue reports whether the memory is eligible for review at the
	// given instant. The boundary is inclusive: a memory due exactly
	// now is due.
	IsDue(state *domain.MemoryReviewState, now time.Time) bool

	// PostponeReview pushes the next review time forward by a specified number of days
	PostponeReview(
		state *domain.MemoryReviewState,
		days int,
		now time.Time,
	) (*domain.MemoryReviewState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	rand   RandomSource
}

// NewDefaultService creates a scheduling service with default parameters
// and the production randomness source.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
		rand:   SystemSource(),
	}
}

// NewService creates a scheduling service with custom parameters and a
// caller-supplied randomness source. Pass FixedSource(0.5) to disable
// jitter for deterministic output.
func NewService(params *Params, rand RandomSource) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	if rand == nil {
		rand = SystemSource()
	}
	return &defaultService{
		params: params,
		rand:   rand,
	}
}

// ComputeInterval implements the Service interface for interval computation
func (s *defaultService) ComputeInterval(
	score domain.ReviewScore,
	reviewCountBefore int,
) (int, error) {
	if !score.IsValid() {
		return 0, ErrInvalidScore
	}

	if reviewCountBefore < 0 {
		return 0, fmt.Errorf("%w: negative review count %d", ErrInvalidState, reviewCountBefore)
	}

	base := calculateBaseInterval(score, reviewCountBefore, s.params)
	return applyJitter(base, s.params, s.rand), nil
}

// ApplyReview implements the Service interface for applying review outcomes
func (s *defaultService) ApplyReview(
	state *domain.MemoryReviewState,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.MemoryReviewState, error) {
	// Validate inputs before touching anything; a failed call must leave
	// the caller's state untouched and produce no partial application.
	if state == nil {
		return nil, ErrNilState
	}

	if !outcome.Score.IsValid() {
		return nil, ErrInvalidScore
	}

	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	newState, _ := calculateNextState(state, outcome, now, s.params, s.rand)
	return newState, nil
}

// IsDue implements the Service interface for due checks
func (s *defaultService) IsDue(state *domain.MemoryReviewState, now time.Time) bool {
	if state == nil {
		return false
	}
	return !state.NextReviewAt.After(now)
}

// PostponeReview implements the Service interface for postponing reviews
func (s *defaultService) PostponeReview(
	state *domain.MemoryReviewState,
	days int,
	now time.Time,
) (*domain.MemoryReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	newState := &domain.MemoryReviewState{
		MemoryID:     state.MemoryID,
		UserID:       state.UserID,
		ReviewCount:  state.ReviewCount,
		LastScore:    state.LastScore,
		NextReviewAt: state.NextReviewAt.AddDate(0, 0, days),
		History:      state.History,
		CreatedAt:    state.CreatedAt,
		UpdatedAt:    now,
	}

	return newState, nil
}
