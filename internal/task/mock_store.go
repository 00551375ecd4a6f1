package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// storedTask captures the persisted view of a task for the in-memory store.
type storedTask struct {
	task      Task
	status    TaskStatus
	errorMsg  string
	updatedAt time.Time
}

// InMemoryTaskStore is a TaskStore for tests. It records every status
// transition and supports the same recovery queries as the real store.
type InMemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*storedTask

	// SaveErr and UpdateErr, when set, are returned by the corresponding
	// methods to simulate persistence failures.
	SaveErr   error
	UpdateErr error
}

// NewInMemoryTaskStore creates an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[uuid.UUID]*storedTask)}
}

func (s *InMemoryTaskStore) SaveTask(ctx context.Context, t Task) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID()] = &storedTask{
		task:      t,
		status:    t.Status(),
		updatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *InMemoryTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	stored.status = status
	stored.errorMsg = errorMsg
	stored.updatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.tasksByStatus(TaskStatusPending, 0), nil
}

func (s *InMemoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.tasksByStatus(TaskStatusProcessing, olderThan), nil
}

func (s *InMemoryTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *InMemoryTaskStore) tasksByStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var out []Task
	for _, stored := range s.tasks {
		if stored.status != status {
			continue
		}
		if olderThan > 0 && stored.updatedAt.After(cutoff) {
			continue
		}
		out = append(out, stored.task)
	}
	return out
}

// StatusOf reports the recorded status for a task ID.
func (s *InMemoryTaskStore) StatusOf(taskID uuid.UUID) (TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tasks[taskID]
	if !ok {
		return "", false
	}
	return stored.status, true
}

var _ TaskStore = (*InMemoryTaskStore)(nil)
