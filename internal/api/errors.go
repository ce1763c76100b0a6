package api

import (
	"errors"
	"net/http"

	"studyhall/internal/domain"
	"studyhall/internal/generation"
	"studyhall/internal/service"
	"studyhall/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, store.ErrQuizNotFound),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// State conflicts
	case errors.Is(err, service.ErrQuizNotLoaded),
		errors.Is(err, service.ErrDeckNotLoaded),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Upstream generation errors
	case errors.Is(err, generation.ErrTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrQuizNotFound):
		return "No quiz is available for this subject"

	case errors.Is(err, store.ErrDeckNotFound):
		return "No flashcard deck is available for this subject"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrQuizNotLoaded):
		return "Start the quiz before using quiz operations"

	case errors.Is(err, service.ErrDeckNotLoaded):
		return "Start the flashcard deck before using deck operations"

	case errors.Is(err, domain.ErrInvalidState):
		return "Operation not allowed in the current state"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, generation.ErrTimeout):
		return "The study assistant took too long to respond"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by content safety filters"

	case errors.Is(err, generation.ErrGenerationFailed):
		return "Failed to generate content"

	default:
		return "An unexpected error occurred"
	}
}
