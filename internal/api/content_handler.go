package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyhall/internal/api/shared"
	"studyhall/internal/domain"
	"studyhall/internal/platform/logger"
	"studyhall/internal/service"
)

// ContentIngester replaces a subject's study content. Implemented by
// service.ContentManager.
type ContentIngester interface {
	ReplaceQuiz(ctx context.Context, subjectID string, items []domain.QuizItem) error
	ReplaceDeck(ctx context.Context, subjectID string, deck *domain.Deck) error
}

var _ ContentIngester = (*service.ContentManager)(nil)

// ContentHandler handles content-ingestion HTTP requests.
type ContentHandler struct {
	content ContentIngester
	logger  *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content ContentIngester, logger *slog.Logger) *ContentHandler {
	if content == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("content ingester cannot be nil for ContentHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ContentHandler")
	}

	return &ContentHandler{
		content: content,
		logger:  logger.With(slog.String("component", "content_handler")),
	}
}

// Routes returns the router for content endpoints, mounted by the
// server under /api/subjects.
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{subjectID}", func(r chi.Router) {
		r.Put("/quiz", h.ReplaceQuiz)
		r.Put("/deck", h.ReplaceDeck)
	})

	return r
}

// ReplaceQuiz handles PUT /subjects/{subjectID}/quiz requests.
func (h *ContentHandler) ReplaceQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	subjectID := chi.URLParam(r, "subjectID")

	var req ReplaceQuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	items := make([]domain.QuizItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.QuizItem{
			Question:      item.Question,
			Options:       item.Options,
			CorrectOption: item.CorrectOption,
			Explanation:   item.Explanation,
		}
	}

	if err := h.content.ReplaceQuiz(r.Context(), subjectID, items); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("quiz content replaced via API",
		slog.String("subject_id", subjectID),
		slog.Int("question_count", len(items)))
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceDeck handles PUT /subjects/{subjectID}/deck requests. Card IDs
// are assigned server-side; a replaced deck is a new set of cards.
func (h *ContentHandler) ReplaceDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	subjectID := chi.URLParam(r, "subjectID")

	var req ReplaceDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck := &domain.Deck{
		ID:    uuid.New(),
		Title: req.Title,
		Cards: make([]domain.FlashcardItem, len(req.Cards)),
	}
	for i, card := range req.Cards {
		deck.Cards[i] = domain.FlashcardItem{
			ID:         uuid.New(),
			Term:       card.Term,
			Definition: card.Definition,
		}
	}

	if err := h.content.ReplaceDeck(r.Context(), subjectID, deck); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("deck content replaced via API",
		slog.String("subject_id", subjectID),
		slog.Int("card_count", len(deck.Cards)))
	w.WriteHeader(http.StatusNoContent)
}
