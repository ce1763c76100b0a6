package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studyhall/internal/domain"
	"studyhall/internal/store"
)

// newTestContentManager builds a manager whose transactions are plain
// function calls, so the mocked stores see the write directly.
func newTestContentManager(t *testing.T) (*ContentManager, *mockQuizStore, *mockDeckStore) {
	t.Helper()

	quizzes := &mockQuizStore{}
	decks := &mockDeckStore{}

	manager := &ContentManager{
		quizzes: quizzes,
		decks:   decks,
		logger:  slog.Default(),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, nil)
		},
	}
	return manager, quizzes, decks
}

func TestNewContentManagerRejectsNilDependencies(t *testing.T) {
	t.Parallel()

	quizzes := &mockQuizStore{}
	decks := &mockDeckStore{}

	_, err := NewContentManager(nil, quizzes, decks, slog.Default())
	assert.ErrorContains(t, err, "database")

	db := &sql.DB{}
	_, err = NewContentManager(db, nil, decks, slog.Default())
	assert.ErrorContains(t, err, "quiz store")

	_, err = NewContentManager(db, quizzes, nil, slog.Default())
	assert.ErrorContains(t, err, "deck store")

	_, err = NewContentManager(db, quizzes, decks, nil)
	assert.ErrorContains(t, err, "logger")
}

func TestReplaceQuizSavesInsideTransaction(t *testing.T) {
	t.Parallel()

	manager, quizzes, _ := newTestContentManager(t)
	items := quizItems()
	quizzes.On("SaveQuiz", mock.Anything, "cell-biology", items).Return(nil).Once()

	require.NoError(t, manager.ReplaceQuiz(context.Background(), "cell-biology", items))
	quizzes.AssertExpectations(t)
}

func TestReplaceQuizRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	manager, quizzes, _ := newTestContentManager(t)

	tests := []struct {
		name    string
		subject string
		items   []domain.QuizItem
	}{
		{name: "blank subject", subject: "", items: quizItems()},
		{name: "no questions", subject: "cell-biology", items: nil},
		{
			name:    "question without text",
			subject: "cell-biology",
			items:   []domain.QuizItem{{Options: []string{"a", "b"}, CorrectOption: "a"}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := manager.ReplaceQuiz(context.Background(), tc.subject, tc.items)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	quizzes.AssertNotCalled(t, "SaveQuiz", mock.Anything, mock.Anything, mock.Anything)
}

func TestReplaceQuizPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	manager, quizzes, _ := newTestContentManager(t)
	quizzes.On("SaveQuiz", mock.Anything, "cell-biology", mock.Anything).
		Return(store.ErrInvalidEntity).Once()

	err := manager.ReplaceQuiz(context.Background(), "cell-biology", quizItems())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestReplaceDeckSavesInsideTransaction(t *testing.T) {
	t.Parallel()

	manager, _, decks := newTestContentManager(t)
	deck := testDeck()
	decks.On("SaveDeck", mock.Anything, "cell-biology", deck).Return(nil).Once()

	require.NoError(t, manager.ReplaceDeck(context.Background(), "cell-biology", deck))
	decks.AssertExpectations(t)
}

func TestReplaceDeckRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	manager, _, decks := newTestContentManager(t)

	tests := []struct {
		name    string
		subject string
		deck    *domain.Deck
	}{
		{name: "blank subject", subject: "", deck: testDeck()},
		{name: "nil deck", subject: "cell-biology", deck: nil},
		{name: "empty deck", subject: "cell-biology", deck: &domain.Deck{Title: "empty"}},
		{
			name:    "card without id",
			subject: "cell-biology",
			deck:    &domain.Deck{Cards: []domain.FlashcardItem{{Term: "latency"}}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := manager.ReplaceDeck(context.Background(), tc.subject, tc.deck)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	decks.AssertNotCalled(t, "SaveDeck", mock.Anything, mock.Anything, mock.Anything)
}
