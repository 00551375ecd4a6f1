package task

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/insight"
)

// InsightGenerationTaskFactory creates InsightGenerationTask instances
type InsightGenerationTaskFactory struct {
	memoryService MemoryService
	generator     insight.Generator
	saver         InsightSaver
	logger        *slog.Logger
}

// NewInsightGenerationTaskFactory creates a new factory for InsightGenerationTasks
func NewInsightGenerationTaskFactory(
	memoryService MemoryService,
	generator insight.Generator,
	saver InsightSaver,
	logger *slog.Logger,
) *InsightGenerationTaskFactory {
	return &InsightGenerationTaskFactory{
		memoryService: memoryService,
		generator:     generator,
		saver:         saver,
		logger:        logger.With("component", "insight_generation_task_factory"),
	}
}

// CreateTask creates a new InsightGenerationTask for the specified memory
func (f *InsightGenerationTaskFactory) CreateTask(memoryID uuid.UUID) (Task, error) {
	return NewInsightGenerationTask(
		memoryID,
		f.memoryService,
		f.generator,
		f.saver,
		f.logger,
	)
}
