package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateMemoryRequest defines the payload for capturing a new memory.
type CreateMemoryRequest struct {
	Title           string   `json:"title"            validate:"max=200"`
	MediaURL        string   `json:"media_url"        validate:"required,url"`
	MediaType       string   `json:"media_type"       validate:"required,oneof=video audio"`
	DurationSeconds int      `json:"duration_seconds" validate:"gte=0"`
	Tags            []string `json:"tags"             validate:"omitempty,dive,min=1,max=50"`

	// CapturedAt optionally backdates the capture (RFC 3339).
	// Empty means the memory was captured just now.
	CapturedAt string `json:"captured_at" validate:"omitempty"`
}

// UpdateMemoryRequest defines the payload for editing a memory's metadata.
type UpdateMemoryRequest struct {
	Title string   `json:"title" validate:"max=200"`
	Tags  []string `json:"tags"  validate:"omitempty,dive,min=1,max=50"`
}

// MemoryResponse represents a memory in API responses.
type MemoryResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	MediaURL        string    `json:"media_url"`
	MediaType       string    `json:"media_type"`
	DurationSeconds int       `json:"duration_seconds"`
	Tags            []string  `json:"tags,omitempty"`
	CapturedAt      time.Time `json:"captured_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MemoryListResponse wraps a page of memories.
type MemoryListResponse struct {
	Memories []MemoryResponse `json:"memories"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// SubmitReviewRequest defines the payload for grading a recall attempt.
// Score uses the 0..3 scale: 0 again, 1 hard, 2 good, 3 easy.
type SubmitReviewRequest struct {
	Score *int   `json:"score" validate:"required,gte=0,lte=3"`
	Notes string `json:"notes" validate:"max=2000"`
}

// PostponeReviewRequest defines the payload for pushing a review forward.
type PostponeReviewRequest struct {
	Days int `json:"days" validate:"required,gte=1"`
}

// ReviewStateResponse represents a memory's scheduling state in API
// responses. History is omitted; clients fetch it rarely and the state row
// is returned after every review.
type ReviewStateResponse struct {
	MemoryID     string    `json:"memory_id"`
	UserID       string    `json:"user_id"`
	ReviewCount  int       `json:"review_count"`
	LastScore    int       `json:"last_score"`
	NextReviewAt time.Time `json:"next_review_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InsightResponse represents a generated insight in API responses.
type InsightResponse struct {
	ID          string    `json:"id"`
	MemoryID    string    `json:"memory_id"`
	Body        string    `json:"body"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DueCountResponse reports how many memories are due for review.
type DueCountResponse struct {
	Due int `json:"due"`
}

// memoryToResponse converts a domain.Memory to its API representation.
func memoryToResponse(memory *domain.Memory) MemoryResponse {
	return MemoryResponse{
		ID:              memory.ID.String(),
		UserID:          memory.UserID.String(),
		Title:           memory.Title,
		MediaURL:        memory.MediaURL,
		MediaType:       string(memory.MediaType),
		DurationSeconds: memory.DurationSeconds,
		Tags:            memory.Tags,
		CapturedAt:      memory.CapturedAt,
		CreatedAt:       memory.CreatedAt,
		UpdatedAt:       memory.UpdatedAt,
	}
}

// stateToResponse converts a domain.MemoryReviewState to its API
// representation.
func stateToResponse(state *domain.MemoryReviewState) ReviewStateResponse {
	return ReviewStateResponse{
		MemoryID:     state.MemoryID.String(),
		UserID:       state.UserID.String(),
		ReviewCount:  state.ReviewCount,
		LastScore:    int(state.LastScore),
		NextReviewAt: state.NextReviewAt,
		UpdatedAt:    state.UpdatedAt,
	}
}

// insightToResponse converts a domain.Insight to its API representation.
func insightToResponse(ins *domain.Insight) InsightResponse {
	return InsightResponse{
		ID:          ins.ID.String(),
		MemoryID:    ins.MemoryID.String(),
		Body:        ins.Body,
		Model:       ins.Model,
		GeneratedAt: ins.GeneratedAt,
	}
}
