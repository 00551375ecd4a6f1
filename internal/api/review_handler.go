package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keepsake-app/keepsake-api/internal/api/shared"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/platform/logger"
	"github.com/keepsake-app/keepsake-api/internal/redact"
	"github.com/keepsake-app/keepsake-api/internal/service/memory_review"
)

// ReviewHandler handles the review loop HTTP requests.
type ReviewHandler struct {
	reviewService memory_review.MemoryReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	reviewService memory_review.MemoryReviewService,
	log *slog.Logger,
) *ReviewHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// GetNextMemory handles GET /reviews/next requests. It returns the most
// overdue memory for the authenticated user, or 204 when nothing is due.
func (h *ReviewHandler) GetNextMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	memory, err := h.reviewService.GetNextMemory(r.Context(), userID)
	if errors.Is(err, memory_review.ErrNoMemoriesDue) {
		log.Debug("no memories due for review", slog.String("user_id", userID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get next memory"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("next review memory retrieved",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memory.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// SubmitReview handles POST /memories/{id}/review requests. It records the
// graded recall and returns the updated scheduling state.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("memory_id", memoryID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return
	}

	state, err := h.reviewService.SubmitReview(
		r.Context(),
		userID,
		memoryID,
		memory_review.ReviewSubmission{
			Outcome: domain.ReviewOutcome{
				Score: domain.ReviewScore(*req.Score),
				Notes: req.Notes,
			},
		},
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit review"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()),
		slog.Int("score", *req.Score))
	shared.RespondWithJSON(w, r, http.StatusOK, stateToResponse(state))
}

// PostponeReview handles POST /memories/{id}/postpone requests. It pushes
// the next review forward without recording an outcome.
func (h *ReviewHandler) PostponeReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	var req PostponeReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return
	}

	state, err := h.reviewService.PostponeReview(r.Context(), userID, memoryID, req.Days)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to postpone review"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("review postponed",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, stateToResponse(state))
}

// DueCount handles GET /reviews/due-count requests.
func (h *ReviewHandler) DueCount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	due, err := h.reviewService.DueCount(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to count due memories", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueCountResponse{Due: due})
}
