package generation

import (
	"fmt"

	"studyhall/internal/domain"
)

// responseContract is appended to every prompt so each provider answers
// with exactly one of the recognized response keys.
const responseContract = `Reply with a single JSON object containing exactly one key: ` +
	`"summary" for a summary task, "mindmap" for a mind map task (Mermaid source), ` +
	`"roadmap" for a road map task, or "answer" for a question. ` +
	`Do not include any other keys or any text outside the JSON object.`

// PromptFor renders the instruction prompt for a task request. The
// request is assumed to be validated.
func PromptFor(req domain.TaskRequest) string {
	switch req.Kind {
	case domain.TaskKindSummary:
		return fmt.Sprintf(
			"Write a concise study summary of the subject %q, covering its key concepts. %s",
			req.SubjectID, responseContract)
	case domain.TaskKindMindMap:
		return fmt.Sprintf(
			"Produce a Mermaid mind-map diagram of the subject %q, organizing its main concepts hierarchically. %s",
			req.SubjectID, responseContract)
	case domain.TaskKindRoadMap:
		return fmt.Sprintf(
			"Lay out a step-by-step learning road map for the subject %q, from fundamentals to advanced topics. %s",
			req.SubjectID, responseContract)
	default:
		return fmt.Sprintf(
			"In the context of the subject %q, answer this question: %s\n%s",
			req.SubjectID, req.Question, responseContract)
	}
}
