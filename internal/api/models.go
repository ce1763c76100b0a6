package api

import (
	"time"

	"studyhall/internal/domain"
	"studyhall/internal/flashcard"
	"studyhall/internal/quiz"
	"studyhall/internal/service"
)

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// AskRequest is the request body for running a study task.
type AskRequest struct {
	Kind     string `json:"kind"     validate:"required,oneof=summary mindmap roadmap qa"`
	Question string `json:"question" validate:"omitempty,max=2000"`
}

// SelectOptionRequest is the request body for choosing a quiz option.
type SelectOptionRequest struct {
	Option string `json:"option" validate:"required"`
}

// RateCardRequest is the request body for rating a flashcard.
type RateCardRequest struct {
	CardID     string `json:"card_id"    validate:"required,uuid"`
	Difficulty int    `json:"difficulty" validate:"required,min=1,max=5"`
}

// AutoAdvanceRequest is the request body for toggling auto-advance.
type AutoAdvanceRequest struct {
	Enabled bool `json:"enabled"`
}

// ReplaceQuizRequest is the request body for replacing a subject's quiz.
type ReplaceQuizRequest struct {
	Items []QuizItemPayload `json:"items" validate:"required,min=1,dive"`
}

// QuizItemPayload is one incoming quiz question.
type QuizItemPayload struct {
	Question      string   `json:"question"       validate:"required"`
	Options       []string `json:"options"        validate:"required,min=2,dive,required"`
	CorrectOption string   `json:"correct_option" validate:"required"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ReplaceDeckRequest is the request body for replacing a subject's deck.
type ReplaceDeckRequest struct {
	Title string             `json:"title" validate:"required"`
	Cards []FlashcardPayload `json:"cards" validate:"required,min=1,dive"`
}

// FlashcardPayload is one incoming term/definition pair. Card IDs are
// assigned server-side.
type FlashcardPayload struct {
	Term       string `json:"term"       validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

// SessionResponse represents a live study session.
type SessionResponse struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnResponse represents one conversation turn.
type TurnResponse struct {
	ID         string    `json:"id"`
	Speaker    string    `json:"speaker"`
	RenderKind string    `json:"render_kind"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// QuizQuestionResponse is the client view of a quiz question. The
// correct option is never included.
type QuizQuestionResponse struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizStateResponse represents the progression state of a quiz.
type QuizStateResponse struct {
	Position int                   `json:"position"`
	Total    int                   `json:"total"`
	Score    int                   `json:"score"`
	Finished bool                  `json:"finished"`
	Current  *QuizQuestionResponse `json:"current,omitempty"`
}

// QuizResultResponse represents the summary of a finished quiz.
type QuizResultResponse struct {
	Total      int    `json:"total"`
	Score      int    `json:"score"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
	Celebrate  bool   `json:"celebrate"`
}

// FlashcardResponse is the client view of one flashcard.
type FlashcardResponse struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// DeckStateResponse represents the state of a flashcard review.
type DeckStateResponse struct {
	Index         int                `json:"index"`
	Total         int                `json:"total"`
	Mode          string             `json:"mode"`
	AutoAdvancing bool               `json:"auto_advancing"`
	ReviewedCount int                `json:"reviewed_count"`
	Current       *FlashcardResponse `json:"current,omitempty"`
}

func sessionToResponse(s *service.StudySession) SessionResponse {
	return SessionResponse{
		ID:        s.ID().String(),
		SubjectID: s.SubjectID(),
		CreatedAt: s.CreatedAt(),
	}
}

func turnToResponse(turn domain.ConversationTurn) TurnResponse {
	return TurnResponse{
		ID:         turn.ID.String(),
		Speaker:    string(turn.Speaker),
		RenderKind: string(turn.RenderKind),
		Content:    turn.Content,
		Status:     string(turn.Status),
		CreatedAt:  turn.CreatedAt,
	}
}

func quizToResponse(engine *quiz.Engine) QuizStateResponse {
	state := QuizStateResponse{
		Position: engine.Position(),
		Total:    len(engine.Items()),
		Score:    engine.Score(),
		Finished: engine.Finished(),
	}

	if item, err := engine.CurrentItem(); err == nil {
		state.Current = &QuizQuestionResponse{
			Question: item.Question,
			Options:  item.Options,
		}
	}

	return state
}

func deckToResponse(engine *flashcard.Engine) DeckStateResponse {
	state := DeckStateResponse{
		Index:         engine.Index(),
		Total:         engine.Len(),
		Mode:          string(engine.Mode()),
		AutoAdvancing: engine.AutoAdvancing(),
		ReviewedCount: len(engine.Reviewed()),
	}

	if card, err := engine.CurrentCard(); err == nil {
		state.Current = &FlashcardResponse{
			ID:         card.ID.String(),
			Term:       card.Term,
			Definition: card.Definition,
		}
	}

	return state
}

func resultToResponse(result quiz.Result) QuizResultResponse {
	return QuizResultResponse{
		Total:      result.Total,
		Score:      result.Score,
		Percentage: result.Percentage,
		Color:      string(result.Color),
		Celebrate:  result.Celebrate,
	}
}
