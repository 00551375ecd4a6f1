package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keepsake-app/keepsake-api/internal/api/shared"
	"github.com/keepsake-app/keepsake-api/internal/service"
	"github.com/keepsake-app/keepsake-api/internal/service/auth"
	"github.com/keepsake-app/keepsake-api/internal/service/memory_review"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"memory not owned", memory_review.ErrMemoryNotOwned, http.StatusForbidden},
		{"service not owned", service.ErrNotOwned, http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"memory not found", store.ErrMemoryNotFound, http.StatusNotFound},
		{"review state not found", memory_review.ErrReviewStateNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid score", memory_review.ErrInvalidScore, http.StatusBadRequest},
		{"invalid postpone days", memory_review.ErrInvalidPostponeDays, http.StatusBadRequest},
		{"no memories due", memory_review.ErrNoMemoriesDue, http.StatusNoContent},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped not-owned",
			fmt.Errorf("submit_review failed: %w", memory_review.ErrMemoryNotOwned),
			http.StatusForbidden,
		},
		{
			"service error wrapping sentinel",
			memory_review.NewSubmitReviewError("state lookup", memory_review.ErrReviewStateNotFound),
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"memory not owned", memory_review.ErrMemoryNotOwned, "You do not own this memory"},
		{"memory not found", service.ErrMemoryNotFound, "Memory not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"invalid score", memory_review.ErrInvalidScore, "Invalid review score"},
		{
			"unknown submit failure",
			memory_review.NewSubmitReviewError("update", errors.New("pq: deadlock detected")),
			"Failed to submit review",
		},
		{
			"unknown error leaks nothing",
			errors.New("postgres://user:pw@host/db timeout"),
			"An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("extracts field from validator error", func(t *testing.T) {
		var req LoginRequest
		err := shared.Validate.Struct(req)
		assert.Error(t, err)

		msg := SanitizeValidationError(err)
		assert.Contains(t, msg, "Invalid Email")
		assert.NotContains(t, msg, "LoginRequest")
	})

	t.Run("falls back for non-validator errors", func(t *testing.T) {
		assert.Equal(t, "Validation error",
			SanitizeValidationError(errors.New("random failure")))
	})
}
