package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/api/shared"
)

var (
	errMissingPathParam = errors.New("missing path parameter")
	errInvalidPathParam = errors.New("invalid path parameter")
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the auth middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, errMissingPathParam
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, errInvalidPathParam
	}

	return id, nil
}

// requireUserAndMemoryID extracts the authenticated user ID and the "id"
// path parameter, writing the error response itself on failure.
func requireUserAndMemoryID(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (userID, memoryID uuid.UUID, ok bool) {
	userID, found := getUserIDFromContext(r)
	if !found {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	memoryID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid memory ID in path", "error", err)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid memory ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, memoryID, true
}
