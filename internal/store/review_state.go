package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// ReviewStateStore defines the interface for review scheduling state
// persistence. The state row and its append-only history records are
// managed together.
type ReviewStateStore interface {
	// Create saves the scheduling state for a freshly captured memory.
	// Returns an error if state for the memory already exists.
	Create(ctx context.Context, state *domain.MemoryReviewState) error

	// Get retrieves the review state for a memory, including its full
	// review history ordered oldest first.
	// Returns ErrReviewStateNotFound if no state exists.
	// NOTE: This method does NOT provide any row locking, so it should not
	// be used when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error)

	// GetForUpdate retrieves the review state with a row-level lock using
	// SELECT FOR UPDATE. This must be used within a transaction when
	// applying a review so that two concurrent submissions for the same
	// memory cannot both be accepted.
	// Returns ErrReviewStateNotFound if no state exists.
	GetForUpdate(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error)

	// Update persists the state produced by applying a review: the
	// updated counters and next review time, plus the newly appended
	// history record. Prior history rows are never modified.
	// Returns ErrReviewStateNotFound if no state exists.
	Update(ctx context.Context, state *domain.MemoryReviewState) error

	// ListDue returns the review states for a user's memories that are
	// due at the given instant (boundary-inclusive), most overdue first,
	// capped at limit.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.MemoryReviewState, error)

	// CountDue returns how many of a user's memories are due at the
	// given instant.
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// WithTx returns a new ReviewStateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}
