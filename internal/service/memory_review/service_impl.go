package memory_review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/domain/schedule"
	"github.com/keepsake-app/keepsake-api/internal/platform/logger"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// Verify interface compliance at compile time
var _ MemoryReviewService = (*memoryReviewServiceImpl)(nil)

// memoryReviewServiceImpl implements the MemoryReviewService interface.
type memoryReviewServiceImpl struct {
	memoryRepo MemoryRepository
	stateRepo  ReviewStateRepository
	scheduler  schedule.Service
	logger     *slog.Logger
}

// NewMemoryReviewService creates a new MemoryReviewService implementation.
func NewMemoryReviewService(
	memoryRepo MemoryRepository,
	stateRepo ReviewStateRepository,
	scheduler schedule.Service,
	logger *slog.Logger,
) MemoryReviewService {
	if memoryRepo == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("memoryRepo cannot be nil")
	}
	if stateRepo == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stateRepo cannot be nil")
	}
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &memoryReviewServiceImpl{
		memoryRepo: memoryRepo,
		stateRepo:  stateRepo,
		scheduler:  scheduler,
		logger:     logger.With(slog.String("component", "memory_review_service")),
	}
}

// GetNextMemory implements MemoryReviewService.GetNextMemory.
func (s *memoryReviewServiceImpl) GetNextMemory(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving next memory for review", slog.String("user_id", userID.String()))

	states, err := s.stateRepo.ListDue(ctx, userID, time.Now().UTC(), 1)
	if err != nil {
		log.Error("failed to list due memories",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetNextMemoryError("failed to list due memories", err)
	}

	if len(states) == 0 {
		log.Debug("no memories due for review", slog.String("user_id", userID.String()))
		return nil, ErrNoMemoriesDue
	}

	memory, err := s.memoryRepo.GetByID(ctx, states[0].MemoryID)
	if err != nil {
		if errors.Is(err, store.ErrMemoryNotFound) {
			// Scheduling state outlived its memory. Surface it as nothing
			// due rather than a server error; the orphan is logged for
			// cleanup.
			log.Warn("due review state references missing memory",
				slog.String("memory_id", states[0].MemoryID.String()),
				slog.String("user_id", userID.String()))
			return nil, ErrNoMemoriesDue
		}
		return nil, NewGetNextMemoryError("failed to load due memory", err)
	}

	log.Debug("retrieved next review memory",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memory.ID.String()))
	return memory, nil
}

// SubmitReview implements MemoryReviewService.SubmitReview.
func (s *memoryReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	memoryID uuid.UUID,
	submission ReviewSubmission,
) (*domain.MemoryReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review submission",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()),
		slog.Int("score", int(submission.Outcome.Score)))

	if !submission.Outcome.Score.IsValid() {
		log.Warn("invalid review score",
			slog.String("user_id", userID.String()),
			slog.String("memory_id", memoryID.String()),
			slog.Int("score", int(submission.Outcome.Score)))
		return nil, ErrInvalidScore
	}

	var updatedState *domain.MemoryReviewState
	err := s.runInTransaction(
		ctx,
		func(ctx context.Context, memoryRepo MemoryRepository, stateRepo ReviewStateRepository) error {
			state, err := s.lockOwnedState(ctx, memoryRepo, stateRepo, userID, memoryID, log)
			if err != nil {
				return err
			}

			newState, err := s.scheduler.ApplyReview(state, submission.Outcome, time.Now().UTC())
			if err != nil {
				if errors.Is(err, schedule.ErrInvalidScore) {
					return ErrInvalidScore
				}
				return fmt.Errorf("failed to apply review: %w", err)
			}

			if err := stateRepo.Update(ctx, newState); err != nil {
				return fmt.Errorf("failed to update review state: %w", err)
			}

			updatedState = newState
			return nil
		},
	)
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("memory_id", memoryID.String()))
		return nil, NewSubmitReviewError("failed to submit review", err)
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()),
		slog.Int("review_count", updatedState.ReviewCount),
		slog.Time("next_review_at", updatedState.NextReviewAt))

	return updatedState, nil
}

// PostponeReview implements MemoryReviewService.PostponeReview.
func (s *memoryReviewServiceImpl) PostponeReview(
	ctx context.Context,
	userID uuid.UUID,
	memoryID uuid.UUID,
	days int,
) (*domain.MemoryReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, ErrInvalidPostponeDays
	}

	var updatedState *domain.MemoryReviewState
	err := s.runInTransaction(
		ctx,
		func(ctx context.Context, memoryRepo MemoryRepository, stateRepo ReviewStateRepository) error {
			state, err := s.lockOwnedState(ctx, memoryRepo, stateRepo, userID, memoryID, log)
			if err != nil {
				return err
			}

			newState, err := s.scheduler.PostponeReview(state, days, time.Now().UTC())
			if err != nil {
				if errors.Is(err, schedule.ErrInvalidDays) {
					return ErrInvalidPostponeDays
				}
				return fmt.Errorf("failed to postpone review: %w", err)
			}

			if err := stateRepo.Update(ctx, newState); err != nil {
				return fmt.Errorf("failed to update review state: %w", err)
			}

			updatedState = newState
			return nil
		},
	)
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to postpone review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("memory_id", memoryID.String()))
		return nil, &ServiceError{Operation: "postpone_review", Message: "failed to postpone review", Err: err}
	}

	log.Debug("review postponed",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()),
		slog.Int("days", days),
		slog.Time("next_review_at", updatedState.NextReviewAt))

	return updatedState, nil
}

// DueCount implements MemoryReviewService.DueCount.
func (s *memoryReviewServiceImpl) DueCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.stateRepo.CountDue(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, &ServiceError{Operation: "due_count", Message: "failed to count due memories", Err: err}
	}
	return count, nil
}

// lockOwnedState verifies the memory exists and belongs to the user, then
// loads its scheduling state under a row lock.
func (s *memoryReviewServiceImpl) lockOwnedState(
	ctx context.Context,
	memoryRepo MemoryRepository,
	stateRepo ReviewStateRepository,
	userID uuid.UUID,
	memoryID uuid.UUID,
	log *slog.Logger,
) (*domain.MemoryReviewState, error) {
	memory, err := memoryRepo.GetByID(ctx, memoryID)
	if err != nil {
		if errors.Is(err, store.ErrMemoryNotFound) {
			log.Warn("memory not found for review",
				slog.String("user_id", userID.String()),
				slog.String("memory_id", memoryID.String()))
			return nil, ErrMemoryNotFound
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}

	if memory.UserID != userID {
		log.Warn("user does not own memory",
			slog.String("user_id", userID.String()),
			slog.String("memory_id", memoryID.String()),
			slog.String("owner_id", memory.UserID.String()))
		return nil, ErrMemoryNotOwned
	}

	state, err := stateRepo.GetForUpdate(ctx, memoryID)
	if err != nil {
		if errors.Is(err, store.ErrReviewStateNotFound) {
			return nil, ErrReviewStateNotFound
		}
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}

	return state, nil
}

// runInTransaction runs fn with transactional repositories. When the
// memory repository carries no database handle (lightweight test doubles),
// fn runs directly against the base repositories.
func (s *memoryReviewServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, MemoryRepository, ReviewStateRepository) error,
) error {
	db := s.memoryRepo.DB()
	if db == nil {
		return fn(ctx, s.memoryRepo, s.stateRepo)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	memoryRepo := s.memoryRepo.WithTx(tx)
	stateRepo := s.stateRepo.WithTx(tx)

	if err := fn(ctx, memoryRepo, stateRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isServiceSentinel reports whether err is one of the package's sentinel
// errors that should pass through to callers unwrapped.
func isServiceSentinel(err error) bool {
	return errors.Is(err, ErrMemoryNotFound) ||
		errors.Is(err, ErrMemoryNotOwned) ||
		errors.Is(err, ErrReviewStateNotFound) ||
		errors.Is(err, ErrInvalidScore) ||
		errors.Is(err, ErrInvalidPostponeDays)
}
