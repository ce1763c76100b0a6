package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"studyhall/internal/domain"
	"studyhall/internal/store"
)

// ContentManager ingests study content: it atomically replaces a
// subject's quiz or flashcard deck. Live sessions are unaffected until
// their next engine start, which reloads through the stores.
type ContentManager struct {
	quizzes store.QuizStore
	decks   store.DeckStore
	logger  *slog.Logger

	// runTx executes fn inside a database transaction. Replaceable in
	// tests, where no real database is available.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewContentManager creates a content manager writing through the given
// database handle.
// It returns an error if any of the required dependencies are nil.
func NewContentManager(
	db *sql.DB,
	quizzes store.QuizStore,
	decks store.DeckStore,
	logger *slog.Logger,
) (*ContentManager, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if quizzes == nil {
		return nil, errors.New("quiz store cannot be nil")
	}
	if decks == nil {
		return nil, errors.New("deck store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &ContentManager{
		quizzes: quizzes,
		decks:   decks,
		logger:  logger.With(slog.String("component", "content_manager")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// ReplaceQuiz replaces the question list for a subject in a single
// transaction. Returns an error wrapping domain.ErrValidation when the
// subject ID is blank, the list is empty, or any item fails validation.
func (m *ContentManager) ReplaceQuiz(ctx context.Context, subjectID string, items []domain.QuizItem) error {
	if subjectID == "" {
		return fmt.Errorf("%w: %v", domain.ErrValidation, domain.ErrEmptySubject)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: quiz must contain at least one question", domain.ErrValidation)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", domain.ErrValidation, i, err)
		}
	}

	err := m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return m.quizzes.WithTx(tx).SaveQuiz(ctx, subjectID, items)
	})
	if err != nil {
		return fmt.Errorf("failed to replace quiz: %w", err)
	}

	m.logger.Info("quiz replaced",
		slog.String("subject_id", subjectID),
		slog.Int("question_count", len(items)))
	return nil
}

// ReplaceDeck replaces the flashcard deck for a subject in a single
// transaction. Returns an error wrapping domain.ErrValidation when the
// subject ID is blank, the deck is nil or empty, or any card fails
// validation.
func (m *ContentManager) ReplaceDeck(ctx context.Context, subjectID string, deck *domain.Deck) error {
	if subjectID == "" {
		return fmt.Errorf("%w: %v", domain.ErrValidation, domain.ErrEmptySubject)
	}
	if deck == nil || len(deck.Cards) == 0 {
		return fmt.Errorf("%w: deck must contain at least one card", domain.ErrValidation)
	}
	for i, card := range deck.Cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: card %d: %v", domain.ErrValidation, i, err)
		}
	}

	err := m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return m.decks.WithTx(tx).SaveDeck(ctx, subjectID, deck)
	})
	if err != nil {
		return fmt.Errorf("failed to replace deck: %w", err)
	}

	m.logger.Info("deck replaced",
		slog.String("subject_id", subjectID),
		slog.Int("card_count", len(deck.Cards)))
	return nil
}
