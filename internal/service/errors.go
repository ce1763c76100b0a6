package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to
// HTTP status codes.
var (
	// ErrSessionNotFound indicates no live session exists for the given ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrSessionNotFound = errors.New("study session not found")

	// ErrQuizNotLoaded indicates a quiz operation was attempted before
	// the session loaded its quiz. API layer should map this to HTTP
	// 409 Conflict.
	ErrQuizNotLoaded = errors.New("quiz has not been started for this session")

	// ErrDeckNotLoaded indicates a flashcard operation was attempted
	// before the session loaded its deck. API layer should map this to
	// HTTP 409 Conflict.
	ErrDeckNotLoaded = errors.New("flashcard deck has not been started for this session")
)
