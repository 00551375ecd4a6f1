package insight

import "errors"

// Common errors returned by insight generators.
var (
	// ErrGenerationFailed is returned when insight generation fails for any
	// general reason.
	ErrGenerationFailed = errors.New("failed to generate insight for memory")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed
	// or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to
	// safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during insight generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrGeneratorDisabled is returned when no API key is configured and the
	// generator is switched off.
	ErrGeneratorDisabled = errors.New("insight generator is disabled")
)
