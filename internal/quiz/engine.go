// Package quiz implements the bounded quiz progression state machine: an
// ordered list of question items walked by Submit, with free backwards
// navigation, a running score, and a terminal result view once the last
// item has been submitted.
package quiz

import (
	"fmt"
	"math"
	"sync"

	"studyhall/internal/domain"
)

// Threshold bands for the finished result view.
const (
	// celebrateThreshold is the percentage above which the result view
	// triggers the celebratory effect.
	celebrateThreshold = 70

	// yellowThreshold is the percentage above which the score tier is
	// yellow rather than red. Above celebrateThreshold it is green.
	yellowThreshold = 30
)

// Result is the summary view computed once the quiz is finished.
type Result struct {
	Total      int               `json:"total"`
	Score      int               `json:"score"`
	Percentage int               `json:"percentage"`
	Color      domain.ScoreColor `json:"color"`

	// Celebrate is true the first time the result is computed for a
	// finished run with a percentage above the celebration threshold,
	// and false on every later computation, so the effect fires once.
	Celebrate bool `json:"celebrate"`
}

// Engine is the quiz progression state machine. It is safe for
// concurrent use.
//
// Invariants: 0 <= position <= len(items); score equals the number of
// recorded correct submissions; submissions are never erased, so the
// answer history may contain several records for the same item index
// when the learner goes back and re-submits.
type Engine struct {
	mu         sync.Mutex
	items      []domain.QuizItem
	position   int
	score      int
	answers    []domain.AnswerRecord
	selected   string
	hasChoice  bool
	celebrated bool
}

// NewEngine creates an engine over the given ordered items. The items
// are copied and immutable afterwards. Returns an error if any item
// fails validation.
func NewEngine(items []domain.QuizItem) (*Engine, error) {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("quiz item %d: %w", i, err)
		}
	}

	copied := make([]domain.QuizItem, len(items))
	copy(copied, items)

	return &Engine{items: copied}, nil
}

// SelectOption records the currently proposed answer for the item at
// the current position. It does not advance the quiz and accepts any
// value; membership in the item's option set is intentionally not
// checked, matching the relaxed behavior of the original flow where a
// skipped or stray selection simply scores as incorrect.
func (e *Engine) SelectOption(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selected = option
	e.hasChoice = true
}

// Submit grades the currently selected option (an absent selection is
// always incorrect), appends an answer record, updates the score, and
// advances the position by one. Submitting past the last item returns
// an error wrapping domain.ErrInvalidState.
func (e *Engine) Submit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position >= len(e.items) {
		return fmt.Errorf("%w: submit called with no items remaining", domain.ErrInvalidState)
	}

	item := e.items[e.position]
	correct := e.hasChoice && e.selected == item.CorrectOption

	e.answers = append(e.answers, domain.AnswerRecord{
		ItemIndex:    e.position,
		ChosenOption: e.selected,
		Correct:      correct,
	})
	if correct {
		e.score++
	}

	e.position++
	e.selected = ""
	e.hasChoice = false
	return nil
}

// GoBack moves the position back by one if possible. The previously
// recorded answer at that index is kept and the score is not
// decremented: this is free navigation, not an undo.
func (e *Engine) GoBack() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position > 0 {
		e.position--
		e.selected = ""
		e.hasChoice = false
	}
}

// Reset reinitializes position, score and answer history without
// reloading the items.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.position = 0
	e.score = 0
	e.answers = nil
	e.selected = ""
	e.hasChoice = false
	e.celebrated = false
}

// Finished reports whether the terminal state has been reached.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.position == len(e.items)
}

// Position returns the current item position.
func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.position
}

// Score returns the number of correct submissions recorded so far.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.score
}

// Items returns a copy of the loaded items.
func (e *Engine) Items() []domain.QuizItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.QuizItem, len(e.items))
	copy(out, e.items)
	return out
}

// CurrentItem returns the item at the current position. Returns an
// error wrapping domain.ErrInvalidState once the quiz is finished.
func (e *Engine) CurrentItem() (domain.QuizItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position >= len(e.items) {
		return domain.QuizItem{}, fmt.Errorf("%w: no current item in finished quiz", domain.ErrInvalidState)
	}

	return e.items[e.position], nil
}

// Answers returns a copy of the submission history in submission order.
func (e *Engine) Answers() []domain.AnswerRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.AnswerRecord, len(e.answers))
	copy(out, e.answers)
	return out
}

// Result computes the terminal summary view. Returns an error wrapping
// domain.ErrInvalidState while the quiz is still in progress.
func (e *Engine) Result() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position != len(e.items) {
		return Result{}, fmt.Errorf("%w: quiz still in progress", domain.ErrInvalidState)
	}

	percentage := 0
	if len(e.items) > 0 {
		percentage = int(math.Round(100 * float64(e.score) / float64(len(e.items))))
	}

	result := Result{
		Total:      len(e.items),
		Score:      e.score,
		Percentage: percentage,
		Color:      scoreColor(percentage),
	}

	if percentage > celebrateThreshold && !e.celebrated {
		result.Celebrate = true
		e.celebrated = true
	}

	return result, nil
}

// ReviewIncorrect starts a sub-session over the items answered
// incorrectly, in first-miss order. Each item appears once even when it
// was missed more than once. Returns an error wrapping
// domain.ErrInvalidState while the quiz is still in progress, and
// domain.ErrInvalidState when there is nothing to review.
func (e *Engine) ReviewIncorrect() (*Engine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position != len(e.items) {
		return nil, fmt.Errorf("%w: quiz still in progress", domain.ErrInvalidState)
	}

	seen := make(map[int]bool)
	var missed []domain.QuizItem
	for _, record := range e.answers {
		if record.Correct || seen[record.ItemIndex] {
			continue
		}
		seen[record.ItemIndex] = true
		missed = append(missed, e.items[record.ItemIndex])
	}

	if len(missed) == 0 {
		return nil, fmt.Errorf("%w: no incorrect answers to review", domain.ErrInvalidState)
	}

	return NewEngine(missed)
}

// scoreColor maps a percentage to its color tier.
func scoreColor(percentage int) domain.ScoreColor {
	switch {
	case percentage > celebrateThreshold:
		return domain.ScoreColorGreen
	case percentage > yellowThreshold:
		return domain.ScoreColorYellow
	default:
		return domain.ScoreColorRed
	}
}
