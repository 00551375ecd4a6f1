package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// InsightStore defines the interface for persisting generated insights.
type InsightStore interface {
	// Create saves a newly generated insight.
	Create(ctx context.Context, insight *domain.Insight) error

	// ListByMemory retrieves the insights for a memory, newest first.
	ListByMemory(ctx context.Context, memoryID uuid.UUID) ([]*domain.Insight, error)

	// DeleteByMemory removes all insights for a memory.
	DeleteByMemory(ctx context.Context, memoryID uuid.UUID) error

	// WithTx returns a new InsightStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InsightStore
}
