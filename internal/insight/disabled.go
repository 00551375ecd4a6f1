package insight

import (
	"context"

	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// disabledGenerator is used when no API key is configured. Every call
// fails with ErrGeneratorDisabled so callers can skip insight creation
// without special-casing configuration.
type disabledGenerator struct{}

// NewDisabledGenerator returns a Generator that always reports
// ErrGeneratorDisabled.
func NewDisabledGenerator() Generator {
	return disabledGenerator{}
}

func (disabledGenerator) GenerateInsight(ctx context.Context, memory *domain.Memory) (*domain.Insight, error) {
	return nil, ErrGeneratorDisabled
}
