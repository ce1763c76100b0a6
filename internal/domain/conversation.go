package domain

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a conversation turn.
type Speaker string

// Possible speakers.
const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// RenderKind identifies how a turn's content should be rendered.
type RenderKind string

// Possible render kinds. Mind-map turns carry raw diagram source whose
// normalization (escaping, syntax coercion) belongs to the external
// diagram-render collaborator, not to this package.
const (
	RenderKindPlainText RenderKind = "plain_text"
	RenderKindMindMap   RenderKind = "mind_map"
)

// TurnStatus represents the resolution state of a conversation turn.
type TurnStatus string

// Possible turn status values. Pending turns are optimistic
// placeholders; Resolved and Failed are both terminal.
const (
	TurnStatusPending  TurnStatus = "pending"
	TurnStatusResolved TurnStatus = "resolved"
	TurnStatusFailed   TurnStatus = "failed"
)

// ConversationTurn is a single entry in a session's conversation log.
// The ID is stable across the Pending -> Resolved transition so callers
// can locate and replace the placeholder they appended.
type ConversationTurn struct {
	ID         uuid.UUID  `json:"id"`
	Speaker    Speaker    `json:"speaker"`
	RenderKind RenderKind `json:"render_kind"`
	Content    string     `json:"content"`
	Status     TurnStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}
