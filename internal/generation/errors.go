package generation

import "errors"

// Common errors returned by the generation package.
var (
	// ErrGenerationFailed is returned when the backend fails for any
	// general reason. All generation errors wrap this sentinel so
	// callers can treat the whole family as the recoverable
	// "generation error" failure mode.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrMalformedResponse is returned when the backend reply carries
	// none of the recognized response fields or cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response from generation backend")

	// ErrTimeout is returned when the backend call exceeds the
	// caller-supplied deadline.
	ErrTimeout = errors.New("generation backend call timed out")

	// ErrContentBlocked is returned when the provider blocks the
	// content through safety filters.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrTransientFailure is returned for temporary provider errors
	// that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when a generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
