package schedule

import (
	"github.com/keepsake-app/keepsake-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm
type Params struct {
	// IntervalMultiplier maps each score to the factor applied to the
	// review count when computing the base interval. The Again entry is
	// unused; failed recalls always reset to AgainIntervalDays.
	IntervalMultiplier map[domain.ReviewScore]float64

	// AgainIntervalDays is the hard-reset interval for failed recalls.
	AgainIntervalDays int

	// JitterFraction is the half-width of the multiplicative jitter range.
	// 0.1 means intervals are perturbed by up to ±10%.
	JitterFraction float64

	// MinIntervalDays is the floor applied after jitter. Always at least 1.
	MinIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	HardMultiplier float64
	GoodMultiplier float64
	EasyMultiplier float64

	AgainIntervalDays int
	JitterFraction    float64
	MinIntervalDays   int
}

// NewDefaultParams creates a new Params instance with default values.
// The defaults implement the documented policy: Again resets to 1 day,
// Hard grants half the review count, Good twice, Easy four times, all
// floor-clamped to 1 day after ±10% jitter.
func NewDefaultParams() *Params {
	return &Params{
		IntervalMultiplier: map[domain.ReviewScore]float64{
			domain.ScoreAgain: 0.0, // reset, multiplier unused
			domain.ScoreHard:  0.5,
			domain.ScoreGood:  2.0,
			domain.ScoreEasy:  4.0,
		},
		AgainIntervalDays: 1,
		JitterFraction:    0.1,
		MinIntervalDays:   1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.HardMultiplier > 0 {
		params.IntervalMultiplier[domain.ScoreHard] = config.HardMultiplier
	}
	if config.GoodMultiplier > 0 {
		params.IntervalMultiplier[domain.ScoreGood] = config.GoodMultiplier
	}
	if config.EasyMultiplier > 0 {
		params.IntervalMultiplier[domain.ScoreEasy] = config.EasyMultiplier
	}

	if config.AgainIntervalDays > 0 {
		params.AgainIntervalDays = config.AgainIntervalDays
	}
	if config.JitterFraction > 0 {
		params.JitterFraction = config.JitterFraction
	}
	if config.MinIntervalDays > 0 {
		params.MinIntervalDays = config.MinIntervalDays
	}

	return params
}
