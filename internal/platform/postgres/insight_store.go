package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// InsightStore implements the store.InsightStore interface using a
// PostgreSQL database as the storage backend.
type InsightStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewInsightStore creates a new PostgreSQL implementation of the InsightStore
// interface. If logger is nil, a default logger will be used.
func NewInsightStore(db store.DBTX, logger *slog.Logger) *InsightStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &InsightStore{
		db:     db,
		logger: logger.With(slog.String("component", "insight_store")),
	}
}

// Ensure InsightStore implements store.InsightStore interface
var _ store.InsightStore = (*InsightStore)(nil)

// Create implements store.InsightStore.Create
func (s *InsightStore) Create(ctx context.Context, insight *domain.Insight) error {
	if err := insight.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO insights (id, memory_id, user_id, body, model, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		insight.ID,
		insight.MemoryID,
		insight.UserID,
		insight.Body,
		insight.Model,
		insight.GeneratedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// ListByMemory implements store.InsightStore.ListByMemory
func (s *InsightStore) ListByMemory(ctx context.Context, memoryID uuid.UUID) ([]*domain.Insight, error) {
	query := `
		SELECT id, memory_id, user_id, body, model, generated_at
		FROM insights
		WHERE memory_id = $1
		ORDER BY generated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, memoryID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var insights []*domain.Insight
	for rows.Next() {
		var insight domain.Insight
		err := rows.Scan(
			&insight.ID,
			&insight.MemoryID,
			&insight.UserID,
			&insight.Body,
			&insight.Model,
			&insight.GeneratedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		insights = append(insights, &insight)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return insights, nil
}

// DeleteByMemory implements store.InsightStore.DeleteByMemory
func (s *InsightStore) DeleteByMemory(ctx context.Context, memoryID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM insights WHERE memory_id = $1`, memoryID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// WithTx implements store.InsightStore.WithTx
func (s *InsightStore) WithTx(tx *sql.Tx) store.InsightStore {
	return &InsightStore{
		db:     tx,
		logger: s.logger,
	}
}
