package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"studyhall/internal/store"
)

func TestEntitySpecificErrorsWrapNotFound(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, store.ErrQuizNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrDeckNotFound, store.ErrNotFound)
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrQuizNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("loading quiz: %w", store.ErrDeckNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrDuplicate))
	assert.False(t, store.IsNotFoundError(errors.New("something else")))
	assert.False(t, store.IsNotFoundError(nil))
}
