package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// MemoryStore implements the store.MemoryStore interface using a
// PostgreSQL database as the storage backend.
type MemoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMemoryStore creates a new PostgreSQL implementation of the MemoryStore interface.
// It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewMemoryStore(db store.DBTX, logger *slog.Logger) *MemoryStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

// Ensure MemoryStore implements store.MemoryStore interface
var _ store.MemoryStore = (*MemoryStore)(nil)

// Create implements store.MemoryStore.Create
func (s *MemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
	if err := memory.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := marshalTags(memory.Tags)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO memories (id, user_id, title, media_url, media_type,
			duration_seconds, tags, captured_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.db.ExecContext(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.MediaURL,
		string(memory.MediaType),
		memory.DurationSeconds,
		tags,
		memory.CapturedAt,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.MemoryStore.GetByID
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	query := `
		SELECT id, user_id, title, media_url, media_type,
			duration_seconds, tags, captured_at, created_at, updated_at
		FROM memories
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	memory, err := scanMemory(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrMemoryNotFound
		}
		return nil, MapError(err)
	}

	return memory, nil
}

// ListByUser implements store.MemoryStore.ListByUser
func (s *MemoryStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	query := `
		SELECT id, user_id, title, media_url, media_type,
			duration_seconds, tags, captured_at, created_at, updated_at
		FROM memories
		WHERE user_id = $1
		ORDER BY captured_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var memories []*domain.Memory
	for rows.Next() {
		memory, err := scanMemory(rows.Scan)
		if err != nil {
			return nil, MapError(err)
		}
		memories = append(memories, memory)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return memories, nil
}

// Update implements store.MemoryStore.Update
func (s *MemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
	if err := memory.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := marshalTags(memory.Tags)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE memories
		SET title = $1, tags = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		memory.Title,
		tags,
		time.Now().UTC(),
		memory.ID,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrMemoryNotFound
	}

	return nil
}

// Delete implements store.MemoryStore.Delete
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrMemoryNotFound
	}

	return nil
}

// WithTx implements store.MemoryStore.WithTx
func (s *MemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return &MemoryStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanMemory reads one memory row through the given scan function so it
// works for both *sql.Row and *sql.Rows.
func scanMemory(scan func(dest ...any) error) (*domain.Memory, error) {
	var (
		memory    domain.Memory
		mediaType string
		tags      []byte
	)

	err := scan(
		&memory.ID,
		&memory.UserID,
		&memory.Title,
		&memory.MediaURL,
		&mediaType,
		&memory.DurationSeconds,
		&tags,
		&memory.CapturedAt,
		&memory.CreatedAt,
		&memory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	memory.MediaType = domain.MediaType(mediaType)

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &memory.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &memory, nil
}

// marshalTags encodes the tag list as JSONB. A nil slice stores as NULL.
func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	return json.Marshal(tags)
}
