package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/keepsake-app/keepsake-api/internal/api/shared"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/platform/logger"
	"github.com/keepsake-app/keepsake-api/internal/redact"
	"github.com/keepsake-app/keepsake-api/internal/service"
)

// MemoryHandler handles memory capture and management HTTP requests.
type MemoryHandler struct {
	memoryService service.MemoryService
	logger        *slog.Logger
}

// NewMemoryHandler creates a new MemoryHandler.
func NewMemoryHandler(memoryService service.MemoryService, log *slog.Logger) *MemoryHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MemoryHandler")
	}
	return &MemoryHandler{
		memoryService: memoryService,
		logger:        log.With(slog.String("component", "memory_handler")),
	}
}

// CreateMemory handles POST /memories requests.
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateMemoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	params := service.CreateMemoryParams{
		Title:           req.Title,
		MediaURL:        req.MediaURL,
		MediaType:       domain.MediaType(req.MediaType),
		DurationSeconds: req.DurationSeconds,
		Tags:            req.Tags,
	}
	if req.CapturedAt != "" {
		capturedAt, err := time.Parse(time.RFC3339, req.CapturedAt)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Invalid captured_at: must be RFC 3339")
			return
		}
		params.CapturedAt = capturedAt
	}

	memory, err := h.memoryService.CreateMemory(r.Context(), userID, params)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to create memory"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("memory created",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memory.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, memoryToResponse(memory))
}

// GetMemory handles GET /memories/{id} requests.
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	memory, err := h.memoryService.GetMemoryForUser(r.Context(), userID, memoryID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// ListMemories handles GET /memories requests with optional limit and
// offset query parameters.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := parseQueryInt(r, "limit", 20)
	offset := parseQueryInt(r, "offset", 0)

	memories, err := h.memoryService.ListMemories(r.Context(), userID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to list memories", err)
		return
	}

	responses := make([]MemoryResponse, 0, len(memories))
	for _, memory := range memories {
		responses = append(responses, memoryToResponse(memory))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MemoryListResponse{
		Memories: responses,
		Limit:    limit,
		Offset:   offset,
	})
}

// UpdateMemory handles PUT /memories/{id} requests.
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	var req UpdateMemoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	memory, err := h.memoryService.UpdateMemory(r.Context(), userID, memoryID, req.Title, req.Tags)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("memory updated",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// DeleteMemory handles DELETE /memories/{id} requests.
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	if err := h.memoryService.DeleteMemory(r.Context(), userID, memoryID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("memory deleted",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memoryID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ListInsights handles GET /memories/{id}/insights requests.
func (h *MemoryHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := requireUserAndMemoryID(w, r, log)
	if !ok {
		return
	}

	insights, err := h.memoryService.ListInsights(r.Context(), userID, memoryID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]InsightResponse, 0, len(insights))
	for _, ins := range insights {
		responses = append(responses, insightToResponse(ins))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// parseQueryInt reads an integer query parameter, falling back to def for
// missing or malformed values.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
