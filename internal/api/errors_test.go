package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"studyhall/internal/domain"
	"studyhall/internal/generation"
	"studyhall/internal/service"
	"studyhall/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound},
		{"quiz not found", store.ErrQuizNotFound, http.StatusNotFound},
		{"deck not found", store.ErrDeckNotFound, http.StatusNotFound},
		{"quiz not loaded", service.ErrQuizNotLoaded, http.StatusConflict},
		{"deck not loaded", service.ErrDeckNotLoaded, http.StatusConflict},
		{"invalid state", domain.ErrInvalidState, http.StatusConflict},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"generation timeout", generation.ErrTimeout, http.StatusGatewayTimeout},
		{"content blocked", generation.ErrContentBlocked, http.StatusUnprocessableEntity},
		{"generation failed", generation.ErrGenerationFailed, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("request: %w", domain.ErrValidation), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksDetails(t *testing.T) {
	t.Parallel()

	leaky := fmt.Errorf("pq: connection to host db.internal:5432 failed: %w", generation.ErrGenerationFailed)
	msg := GetSafeErrorMessage(leaky)
	assert.Equal(t, "Failed to generate content", msg)
	assert.NotContains(t, msg, "db.internal")

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("raw sql error")))
	assert.Equal(t, "Session not found", GetSafeErrorMessage(fmt.Errorf("%w: abc", service.ErrSessionNotFound)))
}
