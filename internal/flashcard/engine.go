// Package flashcard implements the bounded deck review engine: an
// index-addressable iterator over a loaded deck with free browsing and
// graded review modes, difficulty-rating capture, and optional timed
// auto-advance.
package flashcard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/domain"
)

// Default timer settings. The rating delay gives the learner a moment
// to see the rating accepted before the deck advances.
const (
	DefaultRatingAdvanceDelay  = 600 * time.Millisecond
	DefaultAutoAdvanceInterval = 3 * time.Second
)

// RatingSink receives difficulty ratings for persistence. The engine
// treats it as fire-and-forget: failures are logged, never surfaced to
// the review session.
type RatingSink interface {
	RecordRating(ctx context.Context, rating domain.DifficultyRating) error
}

// RatingSinkFunc adapts a function to the RatingSink interface.
type RatingSinkFunc func(ctx context.Context, rating domain.DifficultyRating) error

// RecordRating implements RatingSink.
func (f RatingSinkFunc) RecordRating(ctx context.Context, rating domain.DifficultyRating) error {
	return f(ctx, rating)
}

// Option customizes engine timer behavior.
type Option func(*Engine)

// WithRatingAdvanceDelay overrides the delay between accepting a rating
// in review mode and automatically advancing to the next card.
func WithRatingAdvanceDelay(d time.Duration) Option {
	return func(e *Engine) { e.ratingAdvanceDelay = d }
}

// WithAutoAdvanceInterval overrides the interval of the study-mode
// auto-advance ticker.
func WithAutoAdvanceInterval(d time.Duration) Option {
	return func(e *Engine) { e.autoAdvanceInterval = d }
}

// Engine is the flashcard review state machine. It is safe for
// concurrent use; its timers re-enter the engine through the same lock
// as the caller-facing operations.
//
// Invariants: 0 <= index < len(cards) whenever the deck is non-empty;
// the reviewed set only ever contains IDs of cards in the deck.
type Engine struct {
	mu       sync.Mutex
	cards    []domain.FlashcardItem
	index    int
	mode     domain.DeckMode
	reviewed map[uuid.UUID]bool

	autoAdvance         bool
	autoAdvanceStop     chan struct{}
	pendingAdvance      *time.Timer
	ratingAdvanceDelay  time.Duration
	autoAdvanceInterval time.Duration
	closed              bool

	sink   RatingSink
	logger *slog.Logger
}

// NewEngine creates an engine over the given deck in study mode. The
// cards are copied and immutable afterwards. Returns an error if any
// card fails validation.
func NewEngine(deck domain.Deck, sink RatingSink, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for i, card := range deck.Cards {
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("deck card %d: %w", i, err)
		}
	}

	cards := make([]domain.FlashcardItem, len(deck.Cards))
	copy(cards, deck.Cards)

	engine := &Engine{
		cards:               cards,
		mode:                domain.DeckModeStudy,
		reviewed:            make(map[uuid.UUID]bool),
		ratingAdvanceDelay:  DefaultRatingAdvanceDelay,
		autoAdvanceInterval: DefaultAutoAdvanceInterval,
		sink:                sink,
		logger:              logger.With(slog.String("component", "flashcard_engine")),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// Next moves to the following card. A no-op on the last card or on an
// empty deck.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advanceLocked()
}

// Previous moves to the preceding card. A no-op on the first card or on
// an empty deck.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index > 0 {
		e.index--
	}
}

// ToggleMode switches between study and review mode, resetting the
// position to the first card and clearing the reviewed set. Any running
// auto-advance is stopped, since it only applies to study mode.
func (e *Engine) ToggleMode() domain.DeckMode {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == domain.DeckModeStudy {
		e.mode = domain.DeckModeReview
	} else {
		e.mode = domain.DeckModeStudy
	}

	e.index = 0
	e.reviewed = make(map[uuid.UUID]bool)
	e.stopAutoAdvanceLocked()
	e.cancelPendingAdvanceLocked()
	return e.mode
}

// RateDifficulty records a 1..5 difficulty rating for the given card,
// marks it reviewed, and — in review mode, when not on the last card —
// schedules an automatic advance after a short fixed delay. The rating
// is handed to the sink on a separate goroutine; sink failures are
// logged and never surfaced.
//
// Returns an error wrapping domain.ErrInvalidState on an empty deck and
// an error wrapping domain.ErrValidation for an out-of-range rating or
// a card that is not part of the deck.
func (e *Engine) RateDifficulty(cardID uuid.UUID, score int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.cards) == 0 {
		return fmt.Errorf("%w: cannot rate a card in an empty deck", domain.ErrInvalidState)
	}

	rating := domain.DifficultyRating{CardID: cardID, Difficulty: score}
	if err := rating.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Only cards in the deck may be rated; this keeps the reviewed set
	// a subset of the deck and stops ratings for unknown cards from
	// reaching the sink.
	if !e.containsLocked(cardID) {
		return fmt.Errorf("%w: card %s is not in the deck", domain.ErrValidation, cardID)
	}

	// Idempotent set insertion: rating the same card twice marks it
	// reviewed once.
	e.reviewed[cardID] = true

	if e.sink != nil {
		go e.recordRating(rating)
	}

	if e.mode == domain.DeckModeReview && e.index < len(e.cards)-1 {
		e.scheduleAdvanceLocked()
	}

	return nil
}

// SetAutoAdvance enables or disables the study-mode auto-advance
// ticker. While enabled, the deck advances one card per interval until
// the last card is reached, at which point auto-advance disables
// itself. Manual navigation does not reset the interval's clock.
// Enabling outside study mode is a no-op.
func (e *Engine) SetAutoAdvance(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !enabled {
		e.stopAutoAdvanceLocked()
		return
	}

	if e.mode != domain.DeckModeStudy || e.autoAdvance || len(e.cards) == 0 || e.closed {
		return
	}

	e.autoAdvance = true
	e.autoAdvanceStop = make(chan struct{})
	go e.runAutoAdvance(e.autoAdvanceStop)
}

// AutoAdvancing reports whether the auto-advance ticker is running.
func (e *Engine) AutoAdvancing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.autoAdvance
}

// Index returns the current card position.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.index
}

// Mode returns the current deck mode.
func (e *Engine) Mode() domain.DeckMode {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mode
}

// CurrentCard returns the card at the current position. Returns an
// error wrapping domain.ErrInvalidState on an empty deck.
func (e *Engine) CurrentCard() (domain.FlashcardItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.cards) == 0 {
		return domain.FlashcardItem{}, fmt.Errorf("%w: %v", domain.ErrInvalidState, domain.ErrEmptyDeck)
	}

	return e.cards[e.index], nil
}

// Reviewed returns the IDs of the cards reviewed in the current mode.
func (e *Engine) Reviewed() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]uuid.UUID, 0, len(e.reviewed))
	for id := range e.reviewed {
		out = append(out, id)
	}
	return out
}

// Len returns the number of cards in the deck.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.cards)
}

// Close stops all timers. The engine remains usable for synchronous
// operations but will not schedule further advances.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.stopAutoAdvanceLocked()
	e.cancelPendingAdvanceLocked()
}

// containsLocked reports whether a card with the given ID is in the
// deck. Caller must hold e.mu.
func (e *Engine) containsLocked(cardID uuid.UUID) bool {
	for _, card := range e.cards {
		if card.ID == cardID {
			return true
		}
	}
	return false
}

// advanceLocked moves the index forward, clamped to the last card.
// Caller must hold e.mu. Reports whether the index moved.
func (e *Engine) advanceLocked() bool {
	if e.index < len(e.cards)-1 {
		e.index++
		return true
	}
	return false
}

// scheduleAdvanceLocked arms the post-rating advance timer, replacing
// any timer already pending so back-to-back ratings advance once.
// Caller must hold e.mu.
func (e *Engine) scheduleAdvanceLocked() {
	if e.closed {
		return
	}

	e.cancelPendingAdvanceLocked()
	e.pendingAdvance = time.AfterFunc(e.ratingAdvanceDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.pendingAdvance = nil
		if e.mode == domain.DeckModeReview && !e.closed {
			e.advanceLocked()
		}
	})
}

// cancelPendingAdvanceLocked stops the post-rating timer if armed.
// Caller must hold e.mu.
func (e *Engine) cancelPendingAdvanceLocked() {
	if e.pendingAdvance != nil {
		e.pendingAdvance.Stop()
		e.pendingAdvance = nil
	}
}

// stopAutoAdvanceLocked stops the ticker goroutine if running. Caller
// must hold e.mu.
func (e *Engine) stopAutoAdvanceLocked() {
	if e.autoAdvance {
		e.autoAdvance = false
		close(e.autoAdvanceStop)
		e.autoAdvanceStop = nil
	}
}

// runAutoAdvance drives the study-mode ticker until stopped or the last
// card is reached.
func (e *Engine) runAutoAdvance(stop <-chan struct{}) {
	ticker := time.NewTicker(e.autoAdvanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if !e.autoAdvance {
				e.mu.Unlock()
				return
			}
			moved := e.advanceLocked()
			if !moved || e.index == len(e.cards)-1 {
				// Reached the end: auto-advance disables itself.
				e.stopAutoAdvanceLocked()
				e.mu.Unlock()
				return
			}
			e.mu.Unlock()
		}
	}
}

// recordRating hands a rating to the sink and logs the outcome.
func (e *Engine) recordRating(rating domain.DifficultyRating) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.sink.RecordRating(ctx, rating); err != nil {
		e.logger.Warn("failed to record difficulty rating",
			slog.String("card_id", rating.CardID.String()),
			slog.Int("difficulty", rating.Difficulty),
			slog.String("error", err.Error()))
		return
	}

	e.logger.Debug("difficulty rating recorded",
		slog.String("card_id", rating.CardID.String()),
		slog.Int("difficulty", rating.Difficulty))
}
