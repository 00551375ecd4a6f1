package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/insight"
)

// Common errors
var (
	ErrNilMemoryService = errors.New("memory service cannot be nil")
	ErrNilGenerator     = errors.New("generator cannot be nil")
	ErrNilInsightSaver  = errors.New("insight saver cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyTaskMemory  = errors.New("memory ID cannot be empty")
)

// MemoryService is the slice of the memory service the task needs.
type MemoryService interface {
	// GetMemory retrieves a memory by its ID
	GetMemory(ctx context.Context, memoryID uuid.UUID) (*domain.Memory, error)
}

// InsightSaver persists a generated insight.
type InsightSaver interface {
	SaveInsight(ctx context.Context, ins *domain.Insight) error
}

// insightGenerationPayload is the serialized data stored with the task row.
type insightGenerationPayload struct {
	MemoryID uuid.UUID `json:"memory_id"`
}

// InsightGenerationTask implements the Task interface for generating an
// advisory insight for a freshly captured memory. Insights are best
// effort: a disabled generator completes the task without producing one.
type InsightGenerationTask struct {
	id            uuid.UUID
	memoryID      uuid.UUID
	memoryService MemoryService
	generator     insight.Generator
	saver         InsightSaver
	logger        *slog.Logger
	status        TaskStatus
}

// NewInsightGenerationTask creates a new insight generation task
func NewInsightGenerationTask(
	memoryID uuid.UUID,
	memoryService MemoryService,
	generator insight.Generator,
	saver InsightSaver,
	logger *slog.Logger,
) (*InsightGenerationTask, error) {
	if memoryService == nil {
		return nil, ErrNilMemoryService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if saver == nil {
		return nil, ErrNilInsightSaver
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if memoryID == uuid.Nil {
		return nil, ErrEmptyTaskMemory
	}

	return &InsightGenerationTask{
		id:            uuid.New(),
		memoryID:      memoryID,
		memoryService: memoryService,
		generator:     generator,
		saver:         saver,
		logger:        logger.With("task_type", TaskTypeInsightGeneration, "memory_id", memoryID),
		status:        TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *InsightGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *InsightGenerationTask) Type() string {
	return TaskTypeInsightGeneration
}

// Payload returns the task data as a byte slice
func (t *InsightGenerationTask) Payload() []byte {
	data, err := json.Marshal(insightGenerationPayload{MemoryID: t.memoryID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *InsightGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute fetches the memory, asks the generator for an insight, and
// persists the result. A disabled generator is not an error.
func (t *InsightGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting insight generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	memory, err := t.memoryService.GetMemory(ctx, t.memoryID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve memory", "error", err)
		return fmt.Errorf("failed to retrieve memory: %w", err)
	}

	ins, err := t.generator.GenerateInsight(ctx, memory)
	if err != nil {
		if errors.Is(err, insight.ErrGeneratorDisabled) {
			t.status = TaskStatusCompleted
			t.logger.Info("insight generation disabled, skipping")
			return nil
		}
		t.status = TaskStatusFailed
		t.logger.Error("failed to generate insight", "error", err)
		return fmt.Errorf("failed to generate insight: %w", err)
	}

	if err := t.saver.SaveInsight(ctx, ins); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to save insight", "error", err)
		return fmt.Errorf("failed to save insight: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("insight generation task completed", "insight_id", ins.ID)
	return nil
}
