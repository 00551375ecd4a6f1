package memory_review

import (
	"context"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// MockMemoryReviewService is a configurable mock for handler tests.
type MockMemoryReviewService struct {
	GetNextMemoryFn  func(ctx context.Context, userID uuid.UUID) (*domain.Memory, error)
	SubmitReviewFn   func(ctx context.Context, userID, memoryID uuid.UUID, submission ReviewSubmission) (*domain.MemoryReviewState, error)
	PostponeReviewFn func(ctx context.Context, userID, memoryID uuid.UUID, days int) (*domain.MemoryReviewState, error)
	DueCountFn       func(ctx context.Context, userID uuid.UUID) (int, error)
}

var _ MemoryReviewService = (*MockMemoryReviewService)(nil)

func (m *MockMemoryReviewService) GetNextMemory(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Memory, error) {
	if m.GetNextMemoryFn != nil {
		return m.GetNextMemoryFn(ctx, userID)
	}
	return nil, ErrNoMemoriesDue
}

func (m *MockMemoryReviewService) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	memoryID uuid.UUID,
	submission ReviewSubmission,
) (*domain.MemoryReviewState, error) {
	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, userID, memoryID, submission)
	}
	return nil, ErrMemoryNotFound
}

func (m *MockMemoryReviewService) PostponeReview(
	ctx context.Context,
	userID uuid.UUID,
	memoryID uuid.UUID,
	days int,
) (*domain.MemoryReviewState, error) {
	if m.PostponeReviewFn != nil {
		return m.PostponeReviewFn(ctx, userID, memoryID, days)
	}
	return nil, ErrMemoryNotFound
}

func (m *MockMemoryReviewService) DueCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.DueCountFn != nil {
		return m.DueCountFn(ctx, userID)
	}
	return 0, nil
}
