package memory_review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// MemoryRepository is the slice of memory persistence the review service
// needs, with transaction support.
type MemoryRepository interface {
	// GetByID retrieves a memory by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error)

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MemoryRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// ReviewStateRepository is the slice of scheduling-state persistence the
// review service needs, with transaction support.
type ReviewStateRepository interface {
	// GetForUpdate retrieves the state with a row-level lock. Must be
	// called inside a transaction.
	GetForUpdate(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error)

	// Update persists a rescheduled state and its newest history record.
	Update(ctx context.Context, state *domain.MemoryReviewState) error

	// ListDue returns due states for a user, most overdue first.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.MemoryReviewState, error)

	// CountDue returns how many of a user's memories are due.
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStateRepository
}

// NewMemoryRepositoryAdapter allows a store.MemoryStore to be used where a
// MemoryRepository is expected.
func NewMemoryRepositoryAdapter(memoryStore store.MemoryStore, db *sql.DB) MemoryRepository {
	return &memoryRepositoryAdapter{
		memoryStore: memoryStore,
		db:          db,
	}
}

type memoryRepositoryAdapter struct {
	memoryStore store.MemoryStore
	db          *sql.DB
}

func (a *memoryRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	return a.memoryStore.GetByID(ctx, id)
}

func (a *memoryRepositoryAdapter) WithTx(tx *sql.Tx) MemoryRepository {
	return &memoryRepositoryAdapter{
		memoryStore: a.memoryStore.WithTx(tx),
		db:          a.db,
	}
}

func (a *memoryRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewReviewStateRepositoryAdapter allows a store.ReviewStateStore to be
// used where a ReviewStateRepository is expected.
func NewReviewStateRepositoryAdapter(stateStore store.ReviewStateStore) ReviewStateRepository {
	return &reviewStateRepositoryAdapter{stateStore: stateStore}
}

type reviewStateRepositoryAdapter struct {
	stateStore store.ReviewStateStore
}

func (a *reviewStateRepositoryAdapter) GetForUpdate(
	ctx context.Context,
	memoryID uuid.UUID,
) (*domain.MemoryReviewState, error) {
	return a.stateStore.GetForUpdate(ctx, memoryID)
}

func (a *reviewStateRepositoryAdapter) Update(ctx context.Context, state *domain.MemoryReviewState) error {
	return a.stateStore.Update(ctx, state)
}

func (a *reviewStateRepositoryAdapter) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MemoryReviewState, error) {
	return a.stateStore.ListDue(ctx, userID, now, limit)
}

func (a *reviewStateRepositoryAdapter) CountDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (int, error) {
	return a.stateStore.CountDue(ctx, userID, now)
}

func (a *reviewStateRepositoryAdapter) WithTx(tx *sql.Tx) ReviewStateRepository {
	return &reviewStateRepositoryAdapter{stateStore: a.stateStore.WithTx(tx)}
}
