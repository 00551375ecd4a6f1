package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MediaType identifies the kind of media captured for a memory.
type MediaType string

// Supported media types
const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// Memory-specific validation errors
var (
	// ErrEmptyMemoryID is returned when a memory ID is empty or nil.
	ErrEmptyMemoryID = errors.New("memory ID cannot be empty")

	// ErrEmptyMemoryUserID is returned when a memory's user ID is empty or nil.
	ErrEmptyMemoryUserID = errors.New("memory user ID cannot be empty")

	// ErrEmptyMediaURL is returned when a memory's media URL is empty.
	ErrEmptyMediaURL = errors.New("memory media URL cannot be empty")

	// ErrNegativeDuration is returned when a memory's clip duration is negative.
	ErrNegativeDuration = errors.New("memory duration cannot be negative")
)

// Memory represents a single captured journal entry: a short video or
// audio clip plus the metadata a user attaches to it. The media bytes
// themselves live in external storage; only the URL is tracked here.
type Memory struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	MediaURL        string    `json:"media_url"`
	MediaType       MediaType `json:"media_type"`
	DurationSeconds int       `json:"duration_seconds"`
	Tags            []string  `json:"tags,omitempty"`
	CapturedAt      time.Time `json:"captured_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewMemory creates a new Memory with the given owner and media metadata.
// It generates a new UUID for the memory ID and sets the capture and
// creation/update timestamps to now.
// Returns an error if validation fails.
func NewMemory(
	userID uuid.UUID,
	title, mediaURL string,
	mediaType MediaType,
	durationSeconds int,
	tags []string,
) (*Memory, error) {
	now := time.Now().UTC()
	memory := &Memory{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		MediaURL:        mediaURL,
		MediaType:       mediaType,
		DurationSeconds: durationSeconds,
		Tags:            tags,
		CapturedAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := memory.Validate(); err != nil {
		return nil, err
	}

	return memory, nil
}

// Validate checks if the Memory has valid data.
// Returns an error if any field fails validation.
func (m *Memory) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMemoryID
	}

	if m.UserID == uuid.Nil {
		return ErrEmptyMemoryUserID
	}

	if m.MediaURL == "" {
		return ErrEmptyMediaURL
	}

	if !isValidMediaType(m.MediaType) {
		return ErrInvalidMediaType
	}

	if m.DurationSeconds < 0 {
		return ErrNegativeDuration
	}

	return nil
}

// UpdateMetadata replaces the memory's title and tags and refreshes the
// UpdatedAt timestamp. Media fields are immutable once captured.
func (m *Memory) UpdateMetadata(title string, tags []string) {
	m.Title = title
	m.Tags = tags
	m.UpdatedAt = time.Now().UTC()
}

// isValidMediaType checks if the given media type is supported.
func isValidMediaType(mt MediaType) bool {
	switch mt {
	case MediaTypeVideo, MediaTypeAudio:
		return true
	default:
		return false
	}
}
