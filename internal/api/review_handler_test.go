package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-app/keepsake-api/internal/api/shared"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/service/memory_review"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authenticatedRequest builds a request carrying the user ID in its context,
// as the auth middleware would, plus an optional chi "id" path parameter.
func authenticatedRequest(
	method, target string,
	userID uuid.UUID,
	pathID string,
	body interface{},
) *http.Request {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)

	if pathID != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", pathID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	return req.WithContext(ctx)
}

func testReviewState(userID, memoryID uuid.UUID) *domain.MemoryReviewState {
	now := time.Now().UTC()
	return &domain.MemoryReviewState{
		MemoryID:     memoryID,
		UserID:       userID,
		ReviewCount:  3,
		LastScore:    domain.ScoreGood,
		NextReviewAt: now.AddDate(0, 0, 4),
		CreatedAt:    now.AddDate(0, 0, -30),
		UpdatedAt:    now,
	}
}

func testMemory(t *testing.T, userID uuid.UUID) *domain.Memory {
	t.Helper()
	memory, err := domain.NewMemory(
		userID,
		"Beach trip",
		"https://media.example.com/clips/beach.mp4",
		domain.MediaTypeVideo,
		120,
		[]string{"vacation"},
	)
	require.NoError(t, err)
	return memory
}

func TestGetNextMemory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("returns due memory", func(t *testing.T) {
		memory := testMemory(t, userID)
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			GetNextMemoryFn: func(ctx context.Context, uid uuid.UUID) (*domain.Memory, error) {
				assert.Equal(t, userID, uid)
				return memory, nil
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.GetNextMemory(rr, authenticatedRequest(http.MethodGet, "/reviews/next", userID, "", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp MemoryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, memory.ID.String(), resp.ID)
		assert.Equal(t, "video", resp.MediaType)
	})

	t.Run("returns 204 when nothing is due", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			GetNextMemoryFn: func(ctx context.Context, uid uuid.UUID) (*domain.Memory, error) {
				return nil, memory_review.ErrNoMemoriesDue
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.GetNextMemory(rr, authenticatedRequest(http.MethodGet, "/reviews/next", userID, "", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("returns 401 without user context", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.GetNextMemory(rr, httptest.NewRequest(http.MethodGet, "/reviews/next", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("hides internal errors", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			GetNextMemoryFn: func(ctx context.Context, uid uuid.UUID) (*domain.Memory, error) {
				return nil, memory_review.NewGetNextMemoryError("query failed",
					assert.AnError)
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.GetNextMemory(rr, authenticatedRequest(http.MethodGet, "/reviews/next", userID, "", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "query failed")
	})
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	memoryID := uuid.New()

	scorePtr := func(s int) map[string]interface{} {
		return map[string]interface{}{"score": s}
	}

	t.Run("records review and returns updated state", func(t *testing.T) {
		state := testReviewState(userID, memoryID)
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			SubmitReviewFn: func(
				ctx context.Context,
				uid, mid uuid.UUID,
				submission memory_review.ReviewSubmission,
			) (*domain.MemoryReviewState, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, memoryID, mid)
				assert.Equal(t, domain.ScoreGood, submission.Outcome.Score)
				assert.Equal(t, "remembered the song", submission.Outcome.Notes)
				return state, nil
			},
		}, testLogger())

		body := map[string]interface{}{"score": 2, "notes": "remembered the song"}
		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), body))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp ReviewStateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, memoryID.String(), resp.MemoryID)
		assert.Equal(t, 3, resp.ReviewCount)
		assert.Equal(t, int(domain.ScoreGood), resp.LastScore)
	})

	t.Run("accepts score zero", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			SubmitReviewFn: func(
				ctx context.Context,
				uid, mid uuid.UUID,
				submission memory_review.ReviewSubmission,
			) (*domain.MemoryReviewState, error) {
				assert.Equal(t, domain.ScoreAgain, submission.Outcome.Score)
				return testReviewState(uid, mid), nil
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), scorePtr(0)))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), scorePtr(4)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects missing score", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), map[string]interface{}{}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps not-owned to 403", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			SubmitReviewFn: func(
				ctx context.Context,
				uid, mid uuid.UUID,
				submission memory_review.ReviewSubmission,
			) (*domain.MemoryReviewState, error) {
				return nil, memory_review.ErrMemoryNotOwned
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), scorePtr(2)))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("maps unknown memory to 404", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			SubmitReviewFn: func(
				ctx context.Context,
				uid, mid uuid.UUID,
				submission memory_review.ReviewSubmission,
			) (*domain.MemoryReviewState, error) {
				return nil, memory_review.ErrMemoryNotFound
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/review",
			userID, memoryID.String(), scorePtr(2)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("rejects malformed memory ID", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.SubmitReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/not-a-uuid/review",
			userID, "not-a-uuid", scorePtr(2)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	memoryID := uuid.New()

	t.Run("postpones and returns updated state", func(t *testing.T) {
		state := testReviewState(userID, memoryID)
		state.NextReviewAt = time.Now().UTC().AddDate(0, 0, 7)

		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
			PostponeReviewFn: func(
				ctx context.Context,
				uid, mid uuid.UUID,
				days int,
			) (*domain.MemoryReviewState, error) {
				assert.Equal(t, 7, days)
				return state, nil
			},
		}, testLogger())

		rr := httptest.NewRecorder()
		handler.PostponeReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/postpone",
			userID, memoryID.String(), map[string]interface{}{"days": 7}))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp ReviewStateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.ReviewCount, "postpone must not change the review count")
	})

	t.Run("rejects zero days", func(t *testing.T) {
		handler := NewReviewHandler(&memory_review.MockMemoryReviewService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.PostponeReview(rr, authenticatedRequest(
			http.MethodPost, "/memories/"+memoryID.String()+"/postpone",
			userID, memoryID.String(), map[string]interface{}{"days": 0}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDueCount(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := NewReviewHandler(&memory_review.MockMemoryReviewService{
		DueCountFn: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 5, nil
		},
	}, testLogger())

	rr := httptest.NewRecorder()
	handler.DueCount(rr, authenticatedRequest(http.MethodGet, "/reviews/due-count", userID, "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp DueCountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Due)
}
