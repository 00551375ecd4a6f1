package memory_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// ReviewSubmission represents a user's graded recall of a memory.
type ReviewSubmission struct {
	Outcome domain.ReviewOutcome `json:"outcome"`
}

// MemoryReviewService provides the review loop for captured memories:
// which memory to replay next, recording a graded outcome, and postponing
// a scheduled review.
type MemoryReviewService interface {
	// GetNextMemory retrieves the most overdue memory for a user.
	//
	// Returns:
	//   - (*domain.Memory, nil): the next memory due for review
	//   - (nil, ErrNoMemoriesDue): if nothing is due right now
	//   - (nil, error): any other error from the store layer
	GetNextMemory(ctx context.Context, userID uuid.UUID) (*domain.Memory, error)

	// SubmitReview records a graded recall for a memory and reschedules it.
	// The whole operation runs in a single transaction with the scheduling
	// state locked, so two concurrent submissions for the same memory
	// cannot both be accepted.
	//
	// Returns the updated scheduling state, or one of ErrMemoryNotFound,
	// ErrMemoryNotOwned, ErrReviewStateNotFound, ErrInvalidScore.
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		memoryID uuid.UUID,
		submission ReviewSubmission,
	) (*domain.MemoryReviewState, error)

	// PostponeReview pushes a memory's next review forward by the given
	// number of days without recording an outcome. The review count and
	// history are unchanged.
	PostponeReview(
		ctx context.Context,
		userID uuid.UUID,
		memoryID uuid.UUID,
		days int,
	) (*domain.MemoryReviewState, error)

	// DueCount reports how many of the user's memories are due right now.
	DueCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Common error types for MemoryReviewService
var (
	// ErrNoMemoriesDue indicates that the user has no memories due for review.
	ErrNoMemoriesDue = errors.New("no memories due for review")

	// ErrMemoryNotFound indicates that the memory does not exist.
	ErrMemoryNotFound = errors.New("memory not found")

	// ErrReviewStateNotFound indicates that the memory has no scheduling state.
	ErrReviewStateNotFound = errors.New("review state not found")

	// ErrMemoryNotOwned indicates that the user does not own the memory.
	ErrMemoryNotOwned = errors.New("unauthorized access: memory not owned by user")

	// ErrInvalidScore indicates a review score outside the 0..3 range.
	ErrInvalidScore = errors.New("invalid review score")

	// ErrInvalidPostponeDays indicates a postpone request of less than one day.
	ErrInvalidPostponeDays = errors.New("postpone days must be at least 1")
)

// ServiceError wraps errors from the review service with the failing
// operation, so consumers can differentiate failures with errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "submit_review")
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

// NewGetNextMemoryError returns a new ServiceError for the get_next_memory operation.
func NewGetNextMemoryError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "get_next_memory", Message: message, Err: err}
}
