package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/keepsake-app/keepsake-api/internal/service"
	"github.com/keepsake-app/keepsake-api/internal/service/auth"
	"github.com/keepsake-app/keepsake-api/internal/service/memory_review"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, memory_review.ErrMemoryNotOwned),
		errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrMemoryNotFound),
		errors.Is(err, store.ErrReviewStateNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMemoryNotFound),
		errors.Is(err, memory_review.ErrMemoryNotFound),
		errors.Is(err, memory_review.ErrReviewStateNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, memory_review.ErrInvalidScore),
		errors.Is(err, memory_review.ErrInvalidPostponeDays):
		return http.StatusBadRequest

	// Nothing due for review is a valid empty result
	case errors.Is(err, memory_review.ErrNoMemoriesDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, memory_review.ErrMemoryNotOwned),
		errors.Is(err, service.ErrNotOwned):
		return "You do not own this memory"

	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrMemoryNotFound),
		errors.Is(err, service.ErrMemoryNotFound),
		errors.Is(err, memory_review.ErrMemoryNotFound):
		return "Memory not found"

	case errors.Is(err, store.ErrReviewStateNotFound),
		errors.Is(err, memory_review.ErrReviewStateNotFound):
		return "Review state not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, memory_review.ErrInvalidScore):
		return "Invalid review score"

	case errors.Is(err, memory_review.ErrInvalidPostponeDays):
		return "Postpone days must be at least 1"

	default:
		if strings.Contains(err.Error(), "submit_review") {
			return "Failed to submit review"
		}
		if strings.Contains(err.Error(), "get_next_memory") {
			return "Failed to get next memory"
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError converts a validator error into a user-friendly
// message without echoing the submitted values back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
