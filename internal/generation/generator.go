package generation

import (
	"context"

	"studyhall/internal/domain"
)

// Response is the raw backend reply before normalization. The backend
// returns exactly one of these fields; the task dispatcher inspects
// which one is present and produces the corresponding TaskResult
// variant. A response with no recognized field present is malformed.
type Response struct {
	Summary *string `json:"summary,omitempty"`
	MindMap *string `json:"mindmap,omitempty"`
	RoadMap *string `json:"roadmap,omitempty"`
	Answer  *string `json:"answer,omitempty"`
}

// Empty reports whether none of the recognized response fields is present.
func (r *Response) Empty() bool {
	return r == nil || (r.Summary == nil && r.MindMap == nil && r.RoadMap == nil && r.Answer == nil)
}

// Generator defines the interface for producing study content from a
// task request. This interface serves as a boundary between the
// application core and external AI/LLM services, following the
// hexagonal architecture pattern.
type Generator interface {
	// Generate produces content for the given task request. The request
	// is assumed to be validated by the caller; implementations apply
	// the deadline carried by ctx and map provider failures into this
	// package's error taxonomy.
	Generate(ctx context.Context, req domain.TaskRequest) (*Response, error)
}
