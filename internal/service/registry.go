package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"studyhall/internal/dispatch"
	"studyhall/internal/domain"
	"studyhall/internal/flashcard"
	"studyhall/internal/store"
)

// Registry tracks live study sessions by ID. Sessions are created
// through Create and must be removed with Remove (or Close at
// shutdown) so their flashcard timers are stopped.
type Registry struct {
	dispatcher *dispatch.Dispatcher
	quizzes    store.QuizStore
	decks      store.DeckStore
	sink       flashcard.RatingSink
	logger     *slog.Logger
	cardOpts   []flashcard.Option

	mu       sync.RWMutex
	sessions map[uuid.UUID]*StudySession
}

// NewRegistry creates a session registry.
// It returns an error if any of the required dependencies are nil.
func NewRegistry(
	dispatcher *dispatch.Dispatcher,
	quizzes store.QuizStore,
	decks store.DeckStore,
	sink flashcard.RatingSink,
	logger *slog.Logger,
	cardOpts ...flashcard.Option,
) (*Registry, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if quizzes == nil {
		return nil, errors.New("quiz store cannot be nil")
	}
	if decks == nil {
		return nil, errors.New("deck store cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("rating sink cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Registry{
		dispatcher: dispatcher,
		quizzes:    quizzes,
		decks:      decks,
		sink:       sink,
		logger:     logger.With(slog.String("component", "session_registry")),
		cardOpts:   cardOpts,
		sessions:   make(map[uuid.UUID]*StudySession),
	}, nil
}

// Create starts a new study session for a subject and warms its
// content in the background. Returns domain.ErrEmptySubject when the
// subject ID is blank.
func (r *Registry) Create(ctx context.Context, subjectID string) (*StudySession, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("%w", domain.ErrEmptySubject)
	}

	identity, err := domain.NewSession(subjectID)
	if err != nil {
		return nil, err
	}

	session := newStudySession(
		*identity,
		r.dispatcher,
		r.quizzes,
		r.decks,
		r.sink,
		r.logger,
		r.cardOpts,
	)

	if err := session.Preload(ctx); err != nil {
		// Preload is an optimization; engines load on demand if it
		// fails.
		r.logger.Warn("session content preload failed",
			slog.String("session_id", session.ID().String()),
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()))
	}

	r.mu.Lock()
	r.sessions[session.ID()] = session
	count := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session created",
		slog.String("session_id", session.ID().String()),
		slog.String("subject_id", subjectID),
		slog.Int("active_sessions", count))

	return session, nil
}

// Get returns the live session with the given ID.
// Returns ErrSessionNotFound if no such session exists.
func (r *Registry) Get(id uuid.UUID) (*StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Remove closes a session and removes it from the registry.
// Returns ErrSessionNotFound if no such session exists.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session.Close()
	r.logger.Info("session removed", slog.String("session_id", id.String()))

	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close shuts down every live session. Used at server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*StudySession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[uuid.UUID]*StudySession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	r.logger.Info("all sessions closed", slog.Int("count", len(sessions)))
}
