package store

import (
	"context"
	"database/sql"

	"studyhall/internal/domain"
)

// QuizStore defines the interface for quiz content persistence. The
// progression engine never talks to this store directly; the session
// service loads the item list once, before any engine state is created.
type QuizStore interface {
	// GetQuiz retrieves the ordered question list for a subject.
	// Returns ErrQuizNotFound if the subject has no quiz.
	GetQuiz(ctx context.Context, subjectID string) ([]domain.QuizItem, error)

	// SaveQuiz replaces the question list for a subject.
	// IMPORTANT: This method MUST be run within a transaction for
	// atomicity; use WithTx together with store.RunInTransaction.
	// All items must be valid according to domain validation rules.
	SaveQuiz(ctx context.Context, subjectID string, items []domain.QuizItem) error

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *sql.Tx) QuizStore
}

// DeckStore defines the interface for flashcard deck persistence.
type DeckStore interface {
	// GetDeck retrieves the deck for a subject, cards in deck order.
	// Returns ErrDeckNotFound if the subject has no deck.
	GetDeck(ctx context.Context, subjectID string) (*domain.Deck, error)

	// SaveDeck replaces the deck for a subject.
	// IMPORTANT: This method MUST be run within a transaction for
	// atomicity; use WithTx together with store.RunInTransaction.
	SaveDeck(ctx context.Context, subjectID string, deck *domain.Deck) error

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}

// RatingStore is the difficulty-rating sink. Writes are fire-and-forget
// from the review engine's perspective; failures are logged by the
// caller, never surfaced as session errors.
type RatingStore interface {
	// RecordRating persists one 1..5 difficulty rating for a card.
	RecordRating(ctx context.Context, rating domain.DifficultyRating) error
}
