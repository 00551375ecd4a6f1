package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewScore represents the grade a user assigns after attempting to
// recall a memory.
type ReviewScore int

// Possible review score values
const (
	ScoreAgain ReviewScore = 0 // failed recall
	ScoreHard  ReviewScore = 1 // partial recall
	ScoreGood  ReviewScore = 2 // good recall
	ScoreEasy  ReviewScore = 3 // perfect recall
)

var scoreNames = map[ReviewScore]string{
	ScoreAgain: "again",
	ScoreHard:  "hard",
	ScoreGood:  "good",
	ScoreEasy:  "easy",
}

// IsValid reports whether the score is one of the four defined levels.
func (s ReviewScore) IsValid() bool {
	return s >= ScoreAgain && s <= ScoreEasy
}

// String returns the lowercase name of the score ("again", "hard",
// "good", "easy"). For invalid values it returns "score(n)".
func (s ReviewScore) String() string {
	if name, ok := scoreNames[s]; ok {
		return name
	}
	return fmt.Sprintf("score(%d)", int(s))
}

// Common validation errors for MemoryReviewState
var (
	ErrEmptyStateMemoryID = errors.New("review state memory ID cannot be empty")
	ErrEmptyStateUserID   = errors.New("review state user ID cannot be empty")
	ErrNegativeCount      = errors.New("review count cannot be negative")
	ErrHistoryCountDrift  = errors.New("history length must match review count")
)

// ReviewOutcome is the ephemeral input to a review submission: the grade
// the user assigned plus optional free-text notes. It is not persisted
// directly; applying it folds a ReviewRecord into the state's history.
type ReviewOutcome struct {
	Score ReviewScore `json:"score"`
	Notes string      `json:"notes,omitempty"`
}

// ReviewRecord is one entry in a memory's append-only review history.
type ReviewRecord struct {
	ReviewedAt   time.Time   `json:"reviewed_at"`
	Score        ReviewScore `json:"score"`
	IntervalDays int         `json:"interval_days"`
	Notes        string      `json:"notes,omitempty"`
}

// MemoryReviewState tracks the spaced-repetition scheduling state for one
// memory. It is created once when the memory is captured (due immediately,
// zero history) and mutated only by applying graded review outcomes
// through the schedule package.
type MemoryReviewState struct {
	MemoryID     uuid.UUID      `json:"memory_id"`
	UserID       uuid.UUID      `json:"user_id"`
	ReviewCount  int            `json:"review_count"`
	LastScore    ReviewScore    `json:"last_score"`
	NextReviewAt time.Time      `json:"next_review_at"`
	History      []ReviewRecord `json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewMemoryReviewState creates scheduling state for a freshly captured
// memory. The memory is available for review immediately.
func NewMemoryReviewState(userID, memoryID uuid.UUID) (*MemoryReviewState, error) {
	now := time.Now().UTC()
	state := &MemoryReviewState{
		MemoryID:     memoryID,
		UserID:       userID,
		ReviewCount:  0,
		LastScore:    ScoreAgain, // default before any review
		NextReviewAt: now,        // due immediately
		History:      nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the MemoryReviewState has valid data.
// Returns an error if any field fails validation.
func (s *MemoryReviewState) Validate() error {
	if s.MemoryID == uuid.Nil {
		return ErrEmptyStateMemoryID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.ReviewCount < 0 {
		return ErrNegativeCount
	}

	if s.History != nil && len(s.History) != s.ReviewCount {
		return ErrHistoryCountDrift
	}

	return nil
}

// Note: there are no mutating review methods here. Use
// schedule.Service.ApplyReview, which follows immutability principles by
// returning a new state value rather than modifying the existing one.
