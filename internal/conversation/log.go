// Package conversation implements the ordered, append-only conversation
// log for a study session. Assistant replies are appended optimistically
// as pending placeholder turns and later resolved (or failed) in place
// through their stable turn ID, so order is preserved even when
// resolution happens out of append order.
package conversation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/domain"
)

// Log is an ordered sequence of conversation turns. It is safe for
// concurrent use; Resolve and Fail are no-ops against unknown or
// already-settled turn IDs, so late resolutions against a log that is
// no longer displayed are harmless.
type Log struct {
	mu     sync.Mutex
	turns  []domain.ConversationTurn
	byID   map[uuid.UUID]int
	logger *slog.Logger
}

// NewLog creates an empty conversation log.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}

	return &Log{
		byID:   make(map[uuid.UUID]int),
		logger: logger.With(slog.String("component", "conversation_log")),
	}
}

// AppendUser appends an already-resolved user turn with the given
// content and returns its ID.
func (l *Log) AppendUser(content string) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.append(domain.ConversationTurn{
		ID:         uuid.New(),
		Speaker:    domain.SpeakerUser,
		RenderKind: domain.RenderKindPlainText,
		Content:    content,
		Status:     domain.TurnStatusResolved,
		CreatedAt:  time.Now().UTC(),
	})
}

// AppendPending appends a pending assistant placeholder turn and returns
// its ID for later resolution. Because turns are only ever appended, the
// placeholder sits immediately after the user turn that spawned it.
func (l *Log) AppendPending() uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.append(domain.ConversationTurn{
		ID:         uuid.New(),
		Speaker:    domain.SpeakerAssistant,
		RenderKind: domain.RenderKindPlainText,
		Status:     domain.TurnStatusPending,
		CreatedAt:  time.Now().UTC(),
	})
}

// Resolve transitions the turn with the given ID from Pending to
// Resolved and sets its content and render kind. It is a no-op if the
// ID does not reference a pending turn, which makes duplicate or late
// resolutions safe.
func (l *Log) Resolve(turnID uuid.UUID, content string, renderKind domain.RenderKind) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.pendingIndex(turnID)
	if !ok {
		return
	}

	l.turns[idx].Status = domain.TurnStatusResolved
	l.turns[idx].Content = content
	l.turns[idx].RenderKind = renderKind
}

// Fail transitions the turn with the given ID from Pending to Failed
// with a human-readable message. Failed turns render as plain text and
// are terminal. It is a no-op if the ID does not reference a pending turn.
func (l *Log) Fail(turnID uuid.UUID, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.pendingIndex(turnID)
	if !ok {
		return
	}

	l.turns[idx].Status = domain.TurnStatusFailed
	l.turns[idx].Content = message
	l.turns[idx].RenderKind = domain.RenderKindPlainText
}

// Turns returns a snapshot of the log in append order.
func (l *Log) Turns() []domain.ConversationTurn {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.ConversationTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.turns)
}

// append adds the turn and indexes it. Caller must hold l.mu.
func (l *Log) append(turn domain.ConversationTurn) uuid.UUID {
	l.byID[turn.ID] = len(l.turns)
	l.turns = append(l.turns, turn)
	return turn.ID
}

// pendingIndex looks up the index of a pending turn. Caller must hold
// l.mu. Mismatches are logged at debug level and reported as not found.
func (l *Log) pendingIndex(turnID uuid.UUID) (int, bool) {
	idx, ok := l.byID[turnID]
	if !ok {
		l.logger.Debug("ignoring resolution for unknown turn",
			slog.String("turn_id", turnID.String()))
		return 0, false
	}

	if l.turns[idx].Status != domain.TurnStatusPending {
		l.logger.Debug("ignoring duplicate resolution",
			slog.String("turn_id", turnID.String()),
			slog.String("status", string(l.turns[idx].Status)))
		return 0, false
	}

	return idx, true
}
