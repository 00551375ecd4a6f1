package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/events"
	"github.com/keepsake-app/keepsake-api/internal/store"
	"github.com/keepsake-app/keepsake-api/internal/task"
)

// CreateMemoryParams carries the metadata for a newly captured memory.
// CapturedAt is optional; the zero value means "now".
type CreateMemoryParams struct {
	Title           string
	MediaURL        string
	MediaType       domain.MediaType
	DurationSeconds int
	Tags            []string
	CapturedAt      time.Time
}

// MemoryService provides memory-related operations.
type MemoryService interface {
	// CreateMemory saves a new memory together with its scheduling state
	// (due immediately) in a single transaction, then requests insight
	// generation for it.
	CreateMemory(ctx context.Context, userID uuid.UUID, params CreateMemoryParams) (*domain.Memory, error)

	// GetMemory retrieves a memory by its ID without an ownership check.
	// Background tasks use this; request handlers use GetMemoryForUser.
	GetMemory(ctx context.Context, memoryID uuid.UUID) (*domain.Memory, error)

	// GetMemoryForUser retrieves a memory and verifies the user owns it.
	GetMemoryForUser(ctx context.Context, userID, memoryID uuid.UUID) (*domain.Memory, error)

	// ListMemories returns a page of the user's memories, newest capture first.
	ListMemories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error)

	// UpdateMemory changes a memory's editable metadata (title, tags).
	UpdateMemory(ctx context.Context, userID, memoryID uuid.UUID, title string, tags []string) (*domain.Memory, error)

	// DeleteMemory removes a memory along with its scheduling state,
	// history, and insights.
	DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) error

	// ListInsights returns the generated insights for a memory, newest first.
	ListInsights(ctx context.Context, userID, memoryID uuid.UUID) ([]*domain.Insight, error)

	// SaveInsight persists a generated insight. Background tasks use this.
	SaveInsight(ctx context.Context, ins *domain.Insight) error
}

// MemoryServiceError wraps errors from the memory service with context.
type MemoryServiceError struct {
	// Operation is the operation that failed (e.g., "create_memory")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MemoryServiceError.
func (e *MemoryServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memory service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("memory service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MemoryServiceError) Unwrap() error {
	return e.Err
}

// NewMemoryServiceError creates a new MemoryServiceError.
// Known sentinel errors pass through unwrapped.
func NewMemoryServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrMemoryNotFound) || errors.Is(err, ErrNotOwned) {
		return err
	}

	if errors.Is(err, store.ErrMemoryNotFound) {
		return ErrMemoryNotFound
	}

	return &MemoryServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// memoryServiceImpl implements the MemoryService interface
type memoryServiceImpl struct {
	db           *sql.DB
	memoryStore  store.MemoryStore
	stateStore   store.ReviewStateStore
	insightStore store.InsightStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// Ensure memoryServiceImpl satisfies the task package's narrow views.
var (
	_ task.MemoryService = (MemoryService)(nil)
	_ task.InsightSaver  = (MemoryService)(nil)
)

// NewMemoryService creates a new MemoryService.
// It returns an error if any of the required dependencies are nil.
func NewMemoryService(
	db *sql.DB,
	memoryStore store.MemoryStore,
	stateStore store.ReviewStateStore,
	insightStore store.InsightStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (MemoryService, error) {
	if memoryStore == nil {
		return nil, &MemoryServiceError{Operation: "create_service", Message: "memoryStore cannot be nil"}
	}
	if stateStore == nil {
		return nil, &MemoryServiceError{Operation: "create_service", Message: "stateStore cannot be nil"}
	}
	if insightStore == nil {
		return nil, &MemoryServiceError{Operation: "create_service", Message: "insightStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &MemoryServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &memoryServiceImpl{
		db:           db,
		memoryStore:  memoryStore,
		stateStore:   stateStore,
		insightStore: insightStore,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "memory_service"),
	}, nil
}

// CreateMemory implements MemoryService.CreateMemory.
// The memory and its scheduling state are written atomically so a memory
// can never exist without being reviewable.
func (s *memoryServiceImpl) CreateMemory(
	ctx context.Context,
	userID uuid.UUID,
	params CreateMemoryParams,
) (*domain.Memory, error) {
	memory, err := domain.NewMemory(
		userID,
		params.Title,
		params.MediaURL,
		params.MediaType,
		params.DurationSeconds,
		params.Tags,
	)
	if err != nil {
		s.logger.Warn("failed to create memory object",
			"error", err,
			"user_id", userID)
		return nil, NewMemoryServiceError("create_memory", "invalid memory data", err)
	}
	if !params.CapturedAt.IsZero() {
		memory.CapturedAt = params.CapturedAt.UTC()
	}

	state, err := domain.NewMemoryReviewState(userID, memory.ID)
	if err != nil {
		return nil, NewMemoryServiceError("create_memory", "failed to create review state", err)
	}

	err = s.runInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		memories := s.memoryStore
		states := s.stateStore
		if tx != nil {
			memories = memories.WithTx(tx)
			states = states.WithTx(tx)
		}

		if err := memories.Create(ctx, memory); err != nil {
			return NewMemoryServiceError("create_memory", "failed to save memory", err)
		}
		if err := states.Create(ctx, state); err != nil {
			return NewMemoryServiceError("create_memory", "failed to save review state", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("memory created",
		"memory_id", memory.ID,
		"user_id", userID,
		"media_type", memory.MediaType)

	// Insight generation is advisory: a failed event emission is logged
	// but does not fail the capture.
	payload := struct {
		MemoryID uuid.UUID `json:"memory_id"`
	}{MemoryID: memory.ID}

	event, err := events.NewTaskRequestEvent(task.TaskTypeInsightGeneration, payload)
	if err != nil {
		s.logger.Error("failed to create insight generation event",
			"error", err,
			"memory_id", memory.ID)
		return memory, nil
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit insight generation event",
			"error", err,
			"memory_id", memory.ID,
			"event_id", event.ID)
		return memory, nil
	}

	s.logger.Debug("insight generation event emitted",
		"memory_id", memory.ID,
		"event_id", event.ID)

	return memory, nil
}

// GetMemory implements MemoryService.GetMemory.
func (s *memoryServiceImpl) GetMemory(ctx context.Context, memoryID uuid.UUID) (*domain.Memory, error) {
	memory, err := s.memoryStore.GetByID(ctx, memoryID)
	if err != nil {
		if errors.Is(err, store.ErrMemoryNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, NewMemoryServiceError("get_memory", "failed to retrieve memory", err)
	}
	return memory, nil
}

// GetMemoryForUser implements MemoryService.GetMemoryForUser.
func (s *memoryServiceImpl) GetMemoryForUser(
	ctx context.Context,
	userID, memoryID uuid.UUID,
) (*domain.Memory, error) {
	memory, err := s.GetMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	if memory.UserID != userID {
		s.logger.Warn("user does not own memory",
			"user_id", userID,
			"memory_id", memoryID,
			"owner_id", memory.UserID)
		return nil, ErrNotOwned
	}

	return memory, nil
}

// ListMemories implements MemoryService.ListMemories.
func (s *memoryServiceImpl) ListMemories(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	memories, err := s.memoryStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewMemoryServiceError("list_memories", "failed to list memories", err)
	}
	return memories, nil
}

// UpdateMemory implements MemoryService.UpdateMemory.
func (s *memoryServiceImpl) UpdateMemory(
	ctx context.Context,
	userID, memoryID uuid.UUID,
	title string,
	tags []string,
) (*domain.Memory, error) {
	var updated *domain.Memory
	err := s.runInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		memories := s.memoryStore
		if tx != nil {
			memories = memories.WithTx(tx)
		}

		memory, err := memories.GetByID(ctx, memoryID)
		if err != nil {
			return NewMemoryServiceError("update_memory", "failed to retrieve memory", err)
		}
		if memory.UserID != userID {
			return ErrNotOwned
		}

		memory.UpdateMetadata(title, tags)

		if err := memories.Update(ctx, memory); err != nil {
			return NewMemoryServiceError("update_memory", "failed to save memory", err)
		}

		updated = memory
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteMemory implements MemoryService.DeleteMemory.
// The scheduling state, review history, and insights go with the memory
// through ON DELETE CASCADE constraints.
func (s *memoryServiceImpl) DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) error {
	return s.runInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		memories := s.memoryStore
		if tx != nil {
			memories = memories.WithTx(tx)
		}

		memory, err := memories.GetByID(ctx, memoryID)
		if err != nil {
			return NewMemoryServiceError("delete_memory", "failed to retrieve memory", err)
		}
		if memory.UserID != userID {
			return ErrNotOwned
		}

		if err := memories.Delete(ctx, memoryID); err != nil {
			return NewMemoryServiceError("delete_memory", "failed to delete memory", err)
		}

		s.logger.Info("memory deleted",
			"memory_id", memoryID,
			"user_id", userID)
		return nil
	})
}

// ListInsights implements MemoryService.ListInsights.
func (s *memoryServiceImpl) ListInsights(
	ctx context.Context,
	userID, memoryID uuid.UUID,
) ([]*domain.Insight, error) {
	// Ownership gate before exposing generated content.
	if _, err := s.GetMemoryForUser(ctx, userID, memoryID); err != nil {
		return nil, err
	}

	insights, err := s.insightStore.ListByMemory(ctx, memoryID)
	if err != nil {
		return nil, NewMemoryServiceError("list_insights", "failed to list insights", err)
	}
	return insights, nil
}

// SaveInsight implements MemoryService.SaveInsight.
func (s *memoryServiceImpl) SaveInsight(ctx context.Context, ins *domain.Insight) error {
	if err := s.insightStore.Create(ctx, ins); err != nil {
		return NewMemoryServiceError("save_insight", "failed to save insight", err)
	}

	s.logger.Debug("insight saved",
		"insight_id", ins.ID,
		"memory_id", ins.MemoryID)
	return nil
}

// runInTransaction wraps store.RunInTransaction. Without a database
// handle (lightweight test doubles) the function runs directly with a
// nil transaction.
func (s *memoryServiceImpl) runInTransaction(ctx context.Context, fn store.TxFn) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, s.db, fn)
}
