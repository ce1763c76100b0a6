package domain

import (
	"fmt"
	"strings"
)

// TaskKind identifies the category of content-generation request.
type TaskKind string

// Supported task kinds.
const (
	TaskKindSummary        TaskKind = "summary"
	TaskKindMindMap        TaskKind = "mindmap"
	TaskKindRoadMap        TaskKind = "roadmap"
	TaskKindQuestionAnswer TaskKind = "qa"
)

// IsValid reports whether the kind is one of the supported task kinds.
func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindSummary, TaskKindMindMap, TaskKindRoadMap, TaskKindQuestionAnswer:
		return true
	default:
		return false
	}
}

// Idempotent reports whether repeated requests for the same subject are
// expected to produce the same result. Only summaries are treated as
// idempotent; mind maps, road maps and answers are not guaranteed stable
// across invocations with the same input, so they are never cached.
func (k TaskKind) Idempotent() bool {
	return k == TaskKindSummary
}

// TaskRequest describes a single content-generation request for a subject.
type TaskRequest struct {
	SubjectID string   `json:"subject_id"`
	Kind      TaskKind `json:"kind"`

	// Question carries the user's question text. Required iff
	// Kind == TaskKindQuestionAnswer, ignored otherwise.
	Question string `json:"question,omitempty"`
}

// Validate checks the request against the dispatcher's input contract.
// Returns an error wrapping ErrValidation if the request is malformed.
func (r TaskRequest) Validate() error {
	if strings.TrimSpace(r.SubjectID) == "" {
		return fmt.Errorf("%w: %v", ErrValidation, ErrEmptySubject)
	}

	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: %v: %q", ErrValidation, ErrUnknownTaskKind, r.Kind)
	}

	if r.Kind == TaskKindQuestionAnswer && strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: %v", ErrValidation, ErrEmptyQuestion)
	}

	return nil
}

// TaskResult is the tagged union over the task kinds. Exactly one
// variant is populated, identified by Kind; Text holds that variant's
// textual payload (summary text, mind-map source, road-map source, or
// answer text).
type TaskResult struct {
	Kind TaskKind `json:"kind"`
	Text string   `json:"text"`
}

// RenderKind reports how the result should be rendered in a
// conversation: mind-map results carry diagram source for an external
// renderer, everything else is plain text.
func (t TaskResult) RenderKind() RenderKind {
	if t.Kind == TaskKindMindMap {
		return RenderKindMindMap
	}
	return RenderKindPlainText
}
