package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Insight-specific validation errors
var (
	// ErrEmptyInsightID is returned when an insight ID is empty or nil.
	ErrEmptyInsightID = errors.New("insight ID cannot be empty")

	// ErrEmptyInsightMemoryID is returned when an insight's memory ID is empty or nil.
	ErrEmptyInsightMemoryID = errors.New("insight memory ID cannot be empty")

	// ErrEmptyInsightBody is returned when an insight's body is empty.
	ErrEmptyInsightBody = errors.New("insight body cannot be empty")
)

// Insight is an advisory, best-effort textual suggestion produced by an
// external generator from a memory and its review history. Insights are
// purely informational: nothing in scheduling or storage correctness
// depends on them.
type Insight struct {
	ID          uuid.UUID `json:"id"`
	MemoryID    uuid.UUID `json:"memory_id"`
	UserID      uuid.UUID `json:"user_id"`
	Body        string    `json:"body"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewInsight creates a new Insight for the given memory.
// Returns an error if validation fails.
func NewInsight(userID, memoryID uuid.UUID, body, model string) (*Insight, error) {
	insight := &Insight{
		ID:          uuid.New(),
		MemoryID:    memoryID,
		UserID:      userID,
		Body:        body,
		Model:       model,
		GeneratedAt: time.Now().UTC(),
	}

	if err := insight.Validate(); err != nil {
		return nil, err
	}

	return insight, nil
}

// Validate checks if the Insight has valid data.
// Returns an error if any field fails validation.
func (i *Insight) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInsightID
	}

	if i.MemoryID == uuid.Nil {
		return ErrEmptyInsightMemoryID
	}

	if i.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if i.Body == "" {
		return ErrEmptyInsightBody
	}

	return nil
}
