package insight

import (
	"context"

	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// Generator produces an advisory insight for a captured memory. The
// implementation decides how the memory's metadata (title, tags, capture
// time) is turned into a prompt; callers only see the resulting insight.
type Generator interface {
	// GenerateInsight creates a reflection prompt for the given memory.
	// Returns ErrGeneratorDisabled when generation is switched off, or one
	// of the errors in errors.go when the upstream call fails.
	GenerateInsight(ctx context.Context, memory *domain.Memory) (*domain.Insight, error)
}
