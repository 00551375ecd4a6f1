package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/store"
	"github.com/keepsake-app/keepsake-api/internal/task"
	"github.com/keepsake-app/keepsake-api/internal/testdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// insertTestUser creates a user row inside the transaction and returns it.
func insertTestUser(t *testing.T, tx *sql.Tx, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(email, "correct-horse-battery")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$notarealhashbutlongenoughtostore"
	user.Password = ""

	require.NoError(t, NewUserStore(tx, testLogger()).Create(context.Background(), user))
	return user
}

// insertTestMemory creates a memory row owned by userID inside the transaction.
func insertTestMemory(t *testing.T, tx *sql.Tx, userID uuid.UUID, title string) *domain.Memory {
	t.Helper()

	memory, err := domain.NewMemory(userID, title,
		"https://media.example.com/"+uuid.New().String()+".mp4",
		domain.MediaTypeVideo, 42, []string{"family", "summer"})
	require.NoError(t, err)

	require.NoError(t, NewMemoryStore(tx, testLogger()).Create(context.Background(), memory))
	return memory
}

func TestUserStoreIntegration(t *testing.T) {
	db := testdb.Connect(t)
	ctx := context.Background()

	t.Run("create and retrieve", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			userStore := NewUserStore(tx, testLogger())
			user := insertTestUser(t, tx, "create@example.com")

			byID, err := userStore.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, byID.Email)
			assert.Equal(t, user.HashedPassword, byID.HashedPassword)

			byEmail, err := userStore.GetByEmail(ctx, "create@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)
		})
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			insertTestUser(t, tx, "dup@example.com")

			dup, err := domain.NewUser("dup@example.com", "another-password")
			require.NoError(t, err)
			dup.HashedPassword = "$2a$10$anotherfakehashlongenoughtostore"

			err = NewUserStore(tx, testLogger()).Create(ctx, dup)
			assert.ErrorIs(t, err, store.ErrEmailExists)
		})
	})

	t.Run("delete cascades to memories", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			user := insertTestUser(t, tx, "cascade@example.com")
			memory := insertTestMemory(t, tx, user.ID, "beach day")

			require.NoError(t, NewUserStore(tx, testLogger()).Delete(ctx, user.ID))

			_, err := NewMemoryStore(tx, testLogger()).GetByID(ctx, memory.ID)
			assert.ErrorIs(t, err, store.ErrMemoryNotFound)
		})
	})

	t.Run("not found", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			userStore := NewUserStore(tx, testLogger())

			_, err := userStore.GetByID(ctx, uuid.New())
			assert.ErrorIs(t, err, store.ErrUserNotFound)

			assert.ErrorIs(t, userStore.Delete(ctx, uuid.New()), store.ErrUserNotFound)
		})
	})
}

func TestMemoryStoreIntegration(t *testing.T) {
	db := testdb.Connect(t)
	ctx := context.Background()

	t.Run("round trip preserves tags", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			user := insertTestUser(t, tx, "tags@example.com")
			memory := insertTestMemory(t, tx, user.ID, "lake trip")

			loaded, err := NewMemoryStore(tx, testLogger()).GetByID(ctx, memory.ID)
			require.NoError(t, err)
			assert.Equal(t, memory.MediaURL, loaded.MediaURL)
			assert.Equal(t, domain.MediaTypeVideo, loaded.MediaType)
			assert.Equal(t, []string{"family", "summer"}, loaded.Tags)
		})
	})

	t.Run("list orders newest captured first", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			memoryStore := NewMemoryStore(tx, testLogger())
			user := insertTestUser(t, tx, "list@example.com")

			older, err := domain.NewMemory(user.ID, "older",
				"https://media.example.com/older.mp4", domain.MediaTypeVideo, 10, nil)
			require.NoError(t, err)
			older.CapturedAt = time.Now().UTC().Add(-48 * time.Hour)
			require.NoError(t, memoryStore.Create(ctx, older))

			newer := insertTestMemory(t, tx, user.ID, "newer")

			listed, err := memoryStore.ListByUser(ctx, user.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.Equal(t, newer.ID, listed[0].ID)
			assert.Equal(t, older.ID, listed[1].ID)

			page, err := memoryStore.ListByUser(ctx, user.ID, 1, 1)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, older.ID, page[0].ID)
		})
	})

	t.Run("update metadata", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			memoryStore := NewMemoryStore(tx, testLogger())
			user := insertTestUser(t, tx, "update@example.com")
			memory := insertTestMemory(t, tx, user.ID, "before")

			memory.UpdateMetadata("after", []string{"renamed"})
			require.NoError(t, memoryStore.Update(ctx, memory))

			loaded, err := memoryStore.GetByID(ctx, memory.ID)
			require.NoError(t, err)
			assert.Equal(t, "after", loaded.Title)
			assert.Equal(t, []string{"renamed"}, loaded.Tags)
		})
	})

	t.Run("delete cascades to review state and insights", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			user := insertTestUser(t, tx, "memcascade@example.com")
			memory := insertTestMemory(t, tx, user.ID, "doomed")

			state, err := domain.NewMemoryReviewState(user.ID, memory.ID)
			require.NoError(t, err)
			stateStore := NewReviewStateStore(tx, testLogger())
			require.NoError(t, stateStore.Create(ctx, state))

			ins, err := domain.NewInsight(user.ID, memory.ID, "a note", "gemini-2.0-flash")
			require.NoError(t, err)
			insightStore := NewInsightStore(tx, testLogger())
			require.NoError(t, insightStore.Create(ctx, ins))

			require.NoError(t, NewMemoryStore(tx, testLogger()).Delete(ctx, memory.ID))

			_, err = stateStore.Get(ctx, memory.ID)
			assert.ErrorIs(t, err, store.ErrReviewStateNotFound)

			insights, err := insightStore.ListByMemory(ctx, memory.ID)
			require.NoError(t, err)
			assert.Empty(t, insights)
		})
	})
}

func TestReviewStateStoreIntegration(t *testing.T) {
	db := testdb.Connect(t)
	ctx := context.Background()

	t.Run("new state is due immediately", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			stateStore := NewReviewStateStore(tx, testLogger())
			user := insertTestUser(t, tx, "due@example.com")
			memory := insertTestMemory(t, tx, user.ID, "fresh")

			state, err := domain.NewMemoryReviewState(user.ID, memory.ID)
			require.NoError(t, err)
			require.NoError(t, stateStore.Create(ctx, state))

			count, err := stateStore.CountDue(ctx, user.ID, time.Now().UTC())
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			due, err := stateStore.ListDue(ctx, user.ID, time.Now().UTC(), 10)
			require.NoError(t, err)
			require.Len(t, due, 1)
			assert.Equal(t, memory.ID, due[0].MemoryID)
		})
	})

	t.Run("update appends history record", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			stateStore := NewReviewStateStore(tx, testLogger())
			user := insertTestUser(t, tx, "history@example.com")
			memory := insertTestMemory(t, tx, user.ID, "reviewed")

			state, err := domain.NewMemoryReviewState(user.ID, memory.ID)
			require.NoError(t, err)
			require.NoError(t, stateStore.Create(ctx, state))

			reviewedAt := time.Now().UTC().Truncate(time.Millisecond)
			state.ReviewCount = 1
			state.LastScore = domain.ScoreGood
			state.NextReviewAt = reviewedAt.AddDate(0, 0, 2)
			state.History = append(state.History, domain.ReviewRecord{
				ReviewedAt:   reviewedAt,
				Score:        domain.ScoreGood,
				IntervalDays: 2,
				Notes:        "remembered everything",
			})
			require.NoError(t, stateStore.Update(ctx, state))

			loaded, err := stateStore.Get(ctx, memory.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, loaded.ReviewCount)
			assert.Equal(t, domain.ScoreGood, loaded.LastScore)
			require.Len(t, loaded.History, 1)
			assert.Equal(t, "remembered everything", loaded.History[0].Notes)
			assert.Equal(t, 2, loaded.History[0].IntervalDays)
		})
	})

	t.Run("future state is not due", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			stateStore := NewReviewStateStore(tx, testLogger())
			user := insertTestUser(t, tx, "future@example.com")
			memory := insertTestMemory(t, tx, user.ID, "later")

			state, err := domain.NewMemoryReviewState(user.ID, memory.ID)
			require.NoError(t, err)
			state.NextReviewAt = time.Now().UTC().AddDate(0, 0, 7)
			require.NoError(t, stateStore.Create(ctx, state))

			count, err := stateStore.CountDue(ctx, user.ID, time.Now().UTC())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	})

	t.Run("get for update locks within transaction", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			stateStore := NewReviewStateStore(tx, testLogger())
			user := insertTestUser(t, tx, "lock@example.com")
			memory := insertTestMemory(t, tx, user.ID, "locked")

			state, err := domain.NewMemoryReviewState(user.ID, memory.ID)
			require.NoError(t, err)
			require.NoError(t, stateStore.Create(ctx, state))

			locked, err := stateStore.GetForUpdate(ctx, memory.ID)
			require.NoError(t, err)
			assert.Equal(t, memory.ID, locked.MemoryID)
		})
	})

	t.Run("not found", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			_, err := NewReviewStateStore(tx, testLogger()).Get(ctx, uuid.New())
			assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
		})
	})
}

func TestInsightStoreIntegration(t *testing.T) {
	db := testdb.Connect(t)
	ctx := context.Background()

	t.Run("list newest first", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			insightStore := NewInsightStore(tx, testLogger())
			user := insertTestUser(t, tx, "insights@example.com")
			memory := insertTestMemory(t, tx, user.ID, "analyzed")

			first, err := domain.NewInsight(user.ID, memory.ID, "first", "gemini-2.0-flash")
			require.NoError(t, err)
			first.GeneratedAt = time.Now().UTC().Add(-time.Hour)
			require.NoError(t, insightStore.Create(ctx, first))

			second, err := domain.NewInsight(user.ID, memory.ID, "second", "gemini-2.0-flash")
			require.NoError(t, err)
			require.NoError(t, insightStore.Create(ctx, second))

			listed, err := insightStore.ListByMemory(ctx, memory.ID)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.Equal(t, "second", listed[0].Body)
			assert.Equal(t, "first", listed[1].Body)
		})
	})

	t.Run("delete by memory", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			insightStore := NewInsightStore(tx, testLogger())
			user := insertTestUser(t, tx, "wipe@example.com")
			memory := insertTestMemory(t, tx, user.ID, "wiped")

			ins, err := domain.NewInsight(user.ID, memory.ID, "gone soon", "gemini-2.0-flash")
			require.NoError(t, err)
			require.NoError(t, insightStore.Create(ctx, ins))

			require.NoError(t, insightStore.DeleteByMemory(ctx, memory.ID))

			listed, err := insightStore.ListByMemory(ctx, memory.ID)
			require.NoError(t, err)
			assert.Empty(t, listed)
		})
	})
}

// stubTask is a minimal task.Task for exercising persistence.
type stubTask struct {
	id      uuid.UUID
	payload []byte
	status  task.TaskStatus
}

func (t *stubTask) ID() uuid.UUID                   { return t.id }
func (t *stubTask) Type() string                    { return task.TaskTypeInsightGeneration }
func (t *stubTask) Payload() []byte                 { return t.payload }
func (t *stubTask) Status() task.TaskStatus         { return t.status }
func (t *stubTask) Execute(ctx context.Context) error { return nil }

func TestTaskStoreIntegration(t *testing.T) {
	db := testdb.Connect(t)
	ctx := context.Background()

	t.Run("save and load pending", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			taskStore := NewTaskStore(tx, testLogger())
			stub := &stubTask{id: uuid.New(), payload: []byte(`{"memory_id":"x"}`), status: task.TaskStatusPending}

			require.NoError(t, taskStore.SaveTask(ctx, stub))

			pending, err := taskStore.GetPendingTasks(ctx)
			require.NoError(t, err)
			require.Len(t, pending, 1)
			assert.Equal(t, stub.id, pending[0].ID())
			assert.Equal(t, task.TaskTypeInsightGeneration, pending[0].Type())
			assert.Equal(t, stub.payload, pending[0].Payload())
		})
	})

	t.Run("status transitions", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			taskStore := NewTaskStore(tx, testLogger())
			stub := &stubTask{id: uuid.New(), payload: []byte(`{}`), status: task.TaskStatusPending}
			require.NoError(t, taskStore.SaveTask(ctx, stub))

			require.NoError(t, taskStore.UpdateTaskStatus(ctx, stub.id, task.TaskStatusFailed, "generator unavailable"))

			pending, err := taskStore.GetPendingTasks(ctx)
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	})

	t.Run("stuck processing tasks filtered by age", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			taskStore := NewTaskStore(tx, testLogger())
			stub := &stubTask{id: uuid.New(), payload: []byte(`{}`), status: task.TaskStatusProcessing}
			require.NoError(t, taskStore.SaveTask(ctx, stub))

			recent, err := taskStore.GetProcessingTasks(ctx, time.Hour)
			require.NoError(t, err)
			assert.Empty(t, recent)

			all, err := taskStore.GetProcessingTasks(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	})
}
