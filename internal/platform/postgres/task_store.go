package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/store"
	"github.com/keepsake-app/keepsake-api/internal/task"
)

// TaskStore implements the task.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the task.TaskStore
// interface. If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements task.TaskStore interface
var _ task.TaskStore = (*TaskStore)(nil)

// SaveTask implements task.TaskStore.SaveTask
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		string(t.Status()),
		now,
		now,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus.
// Updating an unknown task is a no-op, not an error; the task may have
// been pruned while a worker was still holding a reference.
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		string(status),
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("no task found to update", "task_id", taskID)
	}

	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *TaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1
	`
	args := []any{string(status)}

	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var tasks []task.Task
	for rows.Next() {
		var (
			t        recoveredTask
			errorMsg sql.NullString
		)
		if err := rows.Scan(&t.id, &t.taskType, &t.payload, &t.status, &errorMsg,
			&t.createdAt, &t.updatedAt); err != nil {
			return nil, MapError(err)
		}
		t.errorMessage = errorMsg.String
		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// WithTx implements task.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &TaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// recoveredTask wraps a task row loaded from the database. Its execution
// function is attached by the runner's recovery path through a factory;
// executing a bare recovered task is an error.
type recoveredTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	executeFn    func(ctx context.Context) error
}

func (t *recoveredTask) ID() uuid.UUID           { return t.id }
func (t *recoveredTask) Type() string            { return t.taskType }
func (t *recoveredTask) Payload() []byte         { return t.payload }
func (t *recoveredTask) Status() task.TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	return fmt.Errorf("no execution function bound for recovered task %s of type %s", t.id, t.taskType)
}
