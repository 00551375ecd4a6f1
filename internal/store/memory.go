package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// MemoryStore defines the interface for memory data persistence.
type MemoryStore interface {
	// Create saves a new memory.
	// Returns validation errors from the domain Memory if data is invalid.
	Create(ctx context.Context, memory *domain.Memory) error

	// GetByID retrieves a memory by its unique ID.
	// Returns ErrMemoryNotFound if the memory does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error)

	// ListByUser retrieves all memories owned by a user, most recently
	// captured first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error)

	// Update modifies an existing memory's metadata.
	// Returns ErrMemoryNotFound if the memory does not exist.
	Update(ctx context.Context, memory *domain.Memory) error

	// Delete removes a memory. The memory's review state and insights
	// are discarded with it through database constraints.
	// Returns ErrMemoryNotFound if the memory does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new MemoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MemoryStore
}
