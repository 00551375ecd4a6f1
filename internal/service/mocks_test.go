package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/events"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// fakeMemoryStore keeps memories in a map. Error fields inject failures
// for specific operations.
type fakeMemoryStore struct {
	memories  map[uuid.UUID]*domain.Memory
	createErr error
	updateErr error

	lastListLimit  int
	lastListOffset int
}

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{memories: make(map[uuid.UUID]*domain.Memory)}
}

func (f *fakeMemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.memories[memory.ID] = memory
	return nil
}

func (f *fakeMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	memory, ok := f.memories[id]
	if !ok {
		return nil, store.ErrMemoryNotFound
	}
	return memory, nil
}

func (f *fakeMemoryStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	f.lastListLimit = limit
	f.lastListOffset = offset

	var owned []*domain.Memory
	for _, memory := range f.memories {
		if memory.UserID == userID {
			owned = append(owned, memory)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CapturedAt.After(owned[j].CapturedAt)
	})

	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (f *fakeMemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.memories[memory.ID]; !ok {
		return store.ErrMemoryNotFound
	}
	f.memories[memory.ID] = memory
	return nil
}

func (f *fakeMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.memories[id]; !ok {
		return store.ErrMemoryNotFound
	}
	delete(f.memories, id)
	return nil
}

func (f *fakeMemoryStore) WithTx(tx *sql.Tx) store.MemoryStore { return f }

// fakeStateStore records created review states keyed by memory ID.
type fakeStateStore struct {
	states    map[uuid.UUID]*domain.MemoryReviewState
	createErr error
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[uuid.UUID]*domain.MemoryReviewState)}
}

func (f *fakeStateStore) Create(ctx context.Context, state *domain.MemoryReviewState) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.states[state.MemoryID] = state
	return nil
}

func (f *fakeStateStore) Get(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error) {
	state, ok := f.states[memoryID]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	return state, nil
}

func (f *fakeStateStore) GetForUpdate(ctx context.Context, memoryID uuid.UUID) (*domain.MemoryReviewState, error) {
	return f.Get(ctx, memoryID)
}

func (f *fakeStateStore) Update(ctx context.Context, state *domain.MemoryReviewState) error {
	if _, ok := f.states[state.MemoryID]; !ok {
		return store.ErrReviewStateNotFound
	}
	f.states[state.MemoryID] = state
	return nil
}

func (f *fakeStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MemoryReviewState, error) {
	var due []*domain.MemoryReviewState
	for _, state := range f.states {
		if state.UserID == userID && !state.NextReviewAt.After(now) {
			due = append(due, state)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeStateStore) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	due, err := f.ListDue(ctx, userID, now, len(f.states)+1)
	return len(due), err
}

func (f *fakeStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore { return f }

// fakeInsightStore appends insights per memory in creation order.
type fakeInsightStore struct {
	insights  map[uuid.UUID][]*domain.Insight
	createErr error
}

func newFakeInsightStore() *fakeInsightStore {
	return &fakeInsightStore{insights: make(map[uuid.UUID][]*domain.Insight)}
}

func (f *fakeInsightStore) Create(ctx context.Context, insight *domain.Insight) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.insights[insight.MemoryID] = append(f.insights[insight.MemoryID], insight)
	return nil
}

func (f *fakeInsightStore) ListByMemory(ctx context.Context, memoryID uuid.UUID) ([]*domain.Insight, error) {
	return f.insights[memoryID], nil
}

func (f *fakeInsightStore) DeleteByMemory(ctx context.Context, memoryID uuid.UUID) error {
	delete(f.insights, memoryID)
	return nil
}

func (f *fakeInsightStore) WithTx(tx *sql.Tx) store.InsightStore { return f }

// fakeUserStore keeps users in a map and enforces email uniqueness.
type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

// recordingEmitter captures emitted events. emitErr injects a failure.
type recordingEmitter struct {
	events  []*events.TaskRequestEvent
	emitErr error
}

func (r *recordingEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if r.emitErr != nil {
		return r.emitErr
	}
	r.events = append(r.events, event)
	return nil
}
