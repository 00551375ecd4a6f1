package schedule

import "math/rand"

// RandomSource supplies the uniform randomness used for interval jitter.
// Implementations must be safe for concurrent use; the scheduler shares a
// single source across all calls.
type RandomSource interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// systemSource draws from math/rand's package-level generator, which is
// safe for concurrent use.
type systemSource struct{}

func (systemSource) Float64() float64 {
	return rand.Float64()
}

// SystemSource returns the production randomness source.
func SystemSource() RandomSource {
	return systemSource{}
}

// fixedSource always returns the same value. A value of 0.5 yields a
// jitter factor of exactly 1.0, making interval outputs deterministic.
type fixedSource float64

func (f fixedSource) Float64() float64 {
	return float64(f)
}

// FixedSource returns a RandomSource that always yields v. Intended for
// tests that assert exact interval outputs.
func FixedSource(v float64) RandomSource {
	return fixedSource(v)
}
