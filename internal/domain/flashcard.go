package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors.
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardTermEmpty is returned when a flashcard has no term.
	ErrFlashcardTermEmpty = errors.New("flashcard term cannot be empty")
)

// FlashcardItem is a single term/definition pair. Immutable once loaded.
type FlashcardItem struct {
	ID         uuid.UUID `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
}

// Validate checks if the FlashcardItem has valid data.
func (f FlashcardItem) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if f.Term == "" {
		return ErrFlashcardTermEmpty
	}

	return nil
}

// Deck is an ordered collection of flashcards belonging to a subject.
type Deck struct {
	ID    uuid.UUID       `json:"id"`
	Title string          `json:"title"`
	Cards []FlashcardItem `json:"cards"`
}

// DeckMode selects between free browsing and graded review.
type DeckMode string

// Possible deck modes.
const (
	DeckModeStudy  DeckMode = "study"
	DeckModeReview DeckMode = "review"
)

// DifficultyRating is a learner's 1..5 difficulty grade for a card.
type DifficultyRating struct {
	CardID     uuid.UUID `json:"card_id"`
	Difficulty int       `json:"difficulty"`
}

// Validate checks that the rating is within the accepted range.
func (r DifficultyRating) Validate() error {
	if r.CardID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if r.Difficulty < 1 || r.Difficulty > 5 {
		return ErrInvalidRating
	}

	return nil
}
