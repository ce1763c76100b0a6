package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when caller input fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an operation is illegal for the
	// current state of a progression engine (e.g. submitting an answer
	// past the last quiz item).
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrEmptyQuestion is returned when a question-answer task is
	// requested without question text.
	ErrEmptyQuestion = errors.New("question text cannot be empty")

	// ErrEmptySubject is returned when a task request carries no subject ID.
	ErrEmptySubject = errors.New("subject ID cannot be empty")

	// ErrUnknownTaskKind is returned when a task request names a kind
	// outside the supported set.
	ErrUnknownTaskKind = errors.New("unknown task kind")

	// ErrEmptyDeck is returned when a deck operation requires at least
	// one card and the deck has none.
	ErrEmptyDeck = errors.New("deck has no cards")

	// ErrInvalidRating is returned when a difficulty rating falls
	// outside the accepted 1..5 range.
	ErrInvalidRating = errors.New("difficulty rating must be between 1 and 5")
)
