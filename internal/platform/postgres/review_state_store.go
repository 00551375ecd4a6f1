package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// ReviewStateStore implements the store.ReviewStateStore interface using a
// PostgreSQL database as the storage backend. The scheduling state lives in
// memory_review_states; the per-review history lives in the append-only
// review_records table and is loaded alongside the state row.
type ReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStateStore creates a new PostgreSQL implementation of the
// ReviewStateStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewReviewStateStore(db store.DBTX, logger *slog.Logger) *ReviewStateStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure ReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*ReviewStateStore)(nil)

// Create implements store.ReviewStateStore.Create
func (s *ReviewStateStore) Create(ctx context.Context, state *domain.MemoryReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO memory_review_states (memory_id, user_id, review_count,
			last_score, next_review_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.MemoryID,
		state.UserID,
		state.ReviewCount,
		int(state.LastScore),
		state.NextReviewAt,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// Get implements store.ReviewStateStore.Get
func (s *ReviewStateStore) Get(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error) {
	return s.get(ctx, memoryID, false)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate
//
// The state row is locked with SELECT FOR UPDATE so that concurrent review
// submissions for the same memory serialize. The caller must already be
// inside a transaction for the lock to outlive the query.
func (s *ReviewStateStore) GetForUpdate(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error) {
	return s.get(ctx, memoryID, true)
}

func (s *ReviewStateStore) get(ctx context.Context, memoryID uuid.UUID, forUpdate bool) (*domain.MemoryReviewState, error) {
	query := `
		SELECT memory_id, user_id, review_count, last_score,
			next_review_at, created_at, updated_at
		FROM memory_review_states
		WHERE memory_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		state     domain.MemoryReviewState
		lastScore int
	)
	err := s.db.QueryRowContext(ctx, query, memoryID).Scan(
		&state.MemoryID,
		&state.UserID,
		&state.ReviewCount,
		&lastScore,
		&state.NextReviewAt,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrReviewStateNotFound
		}
		return nil, MapError(err)
	}
	state.LastScore = domain.ReviewScore(lastScore)

	history, err := s.loadHistory(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	state.History = history

	return &state, nil
}

func (s *ReviewStateStore) loadHistory(ctx context.Context, memoryID uuid.UUID) ([]domain.ReviewRecord, error) {
	query := `
		SELECT reviewed_at, score, interval_days, notes
		FROM review_records
		WHERE memory_id = $1
		ORDER BY reviewed_at ASC, seq ASC
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

	var history []domain.ReviewRecord
	for rows.Next() {
		var (
			record domain.ReviewRecord
			score  int
		)
		if err := rows.Scan(&record.ReviewedAt, &score, &record.IntervalDays, &record.Notes); err != nil {
			return nil, MapError(err)
		}
		record.Score = domain.ReviewScore(score)
		history = append(history, record)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return history, nil
}

// Update implements store.ReviewStateStore.Update
//
// The updated counters are written to the state row and the newly appended
// history record (the last element of state.History) is inserted into
// review_records. Earlier records are never touched.
func (s *ReviewStateStore) Update(ctx context.Context, state *domain.MemoryReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE memory_review_states
		SET review_count = $1, last_score = $2, next_review_at = $3, updated_at = $4
		WHERE memory_id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		state.ReviewCount,
		int(state.LastScore),
		state.NextReviewAt,
		time.Now().UTC(),
		state.MemoryID,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrReviewStateNotFound
	}

	if len(state.History) > 0 {
		record := state.History[len(state.History)-1]
		insert := `
			INSERT INTO review_records (memory_id, user_id, reviewed_at, score, interval_days, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = s.db.ExecContext(ctx, insert,
			state.MemoryID,
			state.UserID,
			record.ReviewedAt,
			int(record.Score),
			record.IntervalDays,
			record.Notes,
		)
		if err != nil {
			return MapError(err)
		}
	}

	return nil
}

// ListDue implements store.ReviewStateStore.ListDue
//
// A memory is due when next_review_at <= now; the comparison is inclusive
// so a review scheduled for exactly now counts. History is not loaded for
// listed states.
func (s *ReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MemoryReviewState, error) {
	query := `
		SELECT memory_id, user_id, review_count, last_score,
			next_review_at, created_at, updated_at
		FROM memory_review_states
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var states []*domain.MemoryReviewState
	for rows.Next() {
		var (
			state     domain.MemoryReviewState
			lastScore int
		)
		err := rows.Scan(
			&state.MemoryID,
			&state.UserID,
			&state.ReviewCount,
			&lastScore,
			&state.NextReviewAt,
			&state.CreatedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		state.LastScore = domain.ReviewScore(lastScore)
		states = append(states, &state)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return states, nil
}

// CountDue implements store.ReviewStateStore.CountDue
func (s *ReviewStateStore) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM memory_review_states
		WHERE user_id = $1 AND next_review_at <= $2
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, now).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.ReviewStateStore.WithTx
func (s *ReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &ReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}
