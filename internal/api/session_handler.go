package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyhall/internal/api/shared"
	"studyhall/internal/domain"
	"studyhall/internal/platform/logger"
	"studyhall/internal/service"
)

// SessionHandler handles study-session HTTP requests.
type SessionHandler struct {
	registry *service.Registry
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(registry *service.Registry, logger *slog.Logger) *SessionHandler {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		registry: registry,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Routes returns the router for session endpoints, mounted by the
// server under /api/sessions.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)

		r.Post("/tasks", h.RunTask)
		r.Get("/turns", h.ListTurns)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/", h.StartQuiz)
			r.Get("/", h.GetQuizState)
			r.Post("/select", h.SelectOption)
			r.Post("/submit", h.SubmitAnswer)
			r.Post("/back", h.GoBack)
			r.Post("/reset", h.ResetQuiz)
			r.Get("/result", h.GetQuizResult)
			r.Post("/review", h.StartIncorrectReview)
		})

		r.Route("/deck", func(r chi.Router) {
			r.Post("/", h.StartFlashcards)
			r.Get("/", h.GetDeckState)
			r.Post("/next", h.NextCard)
			r.Post("/previous", h.PreviousCard)
			r.Post("/mode", h.ToggleMode)
			r.Post("/rate", h.RateCard)
			r.Post("/auto-advance", h.SetAutoAdvance)
		})
	})

	return r
}

// CreateSession handles POST /sessions requests.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.registry.Create(r.Context(), req.SubjectID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("session created via API",
		slog.String("session_id", session.ID().String()),
		slog.String("subject_id", req.SubjectID))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /sessions/{sessionID} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// DeleteSession handles DELETE /sessions/{sessionID} requests.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(r, "sessionID")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := h.registry.Remove(id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunTask handles POST /sessions/{sessionID}/tasks requests. It runs
// one study task and returns the resolved assistant turn.
func (h *SessionHandler) RunTask(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req AskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	turn, err := session.Ask(r.Context(), domain.TaskKind(req.Kind), req.Question)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, turnToResponse(turn))
}

// ListTurns handles GET /sessions/{sessionID}/turns requests.
func (h *SessionHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	turns := session.Turns()
	responses := make([]TurnResponse, 0, len(turns))
	for _, turn := range turns {
		responses = append(responses, turnToResponse(turn))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// StartQuiz handles POST /sessions/{sessionID}/quiz requests.
func (h *SessionHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.StartQuiz(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, quizToResponse(engine))
}

// GetQuizState handles GET /sessions/{sessionID}/quiz requests.
func (h *SessionHandler) GetQuizState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, quizToResponse(engine))
}

// SelectOption handles POST /sessions/{sessionID}/quiz/select requests.
func (h *SessionHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req SelectOptionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.SelectOption(req.Option)
	shared.RespondWithJSON(w, r, http.StatusOK, quizToResponse(engine))
}

// SubmitAnswer handles POST /sessions/{sessionID}/quiz/submit requests.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := engine.Submit(); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, quizToResponse(engine))
}

// GoBack handles POST /sessions/{sessionID}/quiz/back requests.
func (h *SessionHandler) GoBack(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.GoBack()
	shared.RespondWithJSON(w, r, http.StatusOK, quizToResponse(engine))
}

// ResetQuiz handles POST /sessions/{sessionID}/quiz/reset requests.
func (h *SessionHandler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.Reset()
	shared.RespondWithJSON(w, r, http.StatusOK, quizToResponse(engine))
}

// GetQuizResult handles GET /sessions/{sessionID}/quiz/result requests.
func (h *SessionHandler) GetQuizResult(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.ActiveQuiz()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	result, err := engine.Result()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(result))
}

// StartIncorrectReview handles POST /sessions/{sessionID}/quiz/review
// requests.
func (h *SessionHandler) StartIncorrectReview(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	review, err := session.StartIncorrectReview()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, quizToResponse(review))
}

// StartFlashcards handles POST /sessions/{sessionID}/deck requests.
func (h *SessionHandler) StartFlashcards(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.StartFlashcards(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(engine))
}

// GetDeckState handles GET /sessions/{sessionID}/deck requests.
func (h *SessionHandler) GetDeckState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}

// NextCard handles POST /sessions/{sessionID}/deck/next requests.
func (h *SessionHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.Next()
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}

// PreviousCard handles POST /sessions/{sessionID}/deck/previous requests.
func (h *SessionHandler) PreviousCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.Previous()
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}

// ToggleMode handles POST /sessions/{sessionID}/deck/mode requests.
func (h *SessionHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.ToggleMode()
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}

// RateCard handles POST /sessions/{sessionID}/deck/rate requests.
func (h *SessionHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req RateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := engine.RateDifficulty(cardID, req.Difficulty); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}

// SetAutoAdvance handles POST /sessions/{sessionID}/deck/auto-advance
// requests.
func (h *SessionHandler) SetAutoAdvance(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req AutoAdvanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	engine, err := session.Flashcards()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	engine.SetAutoAdvance(req.Enabled)
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(engine))
}
