package domain

import "errors"

// Quiz-specific validation errors.
var (
	// ErrQuizItemQuestionEmpty is returned when a quiz item has no question text.
	ErrQuizItemQuestionEmpty = errors.New("quiz item question cannot be empty")

	// ErrQuizItemNoOptions is returned when a quiz item has no answer options.
	ErrQuizItemNoOptions = errors.New("quiz item must have at least one option")
)

// QuizItem is a single multiple-choice question. Immutable once loaded.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Validate checks if the QuizItem has valid data.
// Returns an error if any field fails validation.
func (q QuizItem) Validate() error {
	if q.Question == "" {
		return ErrQuizItemQuestionEmpty
	}

	if len(q.Options) == 0 {
		return ErrQuizItemNoOptions
	}

	return nil
}

// AnswerRecord captures one submission against one quiz item. The quiz
// engine appends a record per Submit call, so the history may contain
// several records for the same item index when the learner navigates
// back and re-submits.
type AnswerRecord struct {
	ItemIndex    int    `json:"item_index"`
	ChosenOption string `json:"chosen_option"`
	Correct      bool   `json:"correct"`
}

// ScoreColor is the color tier assigned to a finished quiz score.
type ScoreColor string

// Color tiers for the quiz result view.
const (
	ScoreColorGreen  ScoreColor = "green"
	ScoreColorYellow ScoreColor = "yellow"
	ScoreColorRed    ScoreColor = "red"
)
