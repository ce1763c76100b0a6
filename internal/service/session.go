package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studyhall/internal/conversation"
	"studyhall/internal/dispatch"
	"studyhall/internal/domain"
	"studyhall/internal/flashcard"
	"studyhall/internal/quiz"
	"studyhall/internal/store"
)

// StudySession is the aggregate owning all per-session state: the
// conversation log, the quiz progression engine, and the flashcard
// review engine. Engines are created lazily the first time their
// feature is started; content is loaded through the stores exactly
// once per engine start.
//
// All methods are safe for concurrent use.
type StudySession struct {
	session domain.Session

	dispatcher *dispatch.Dispatcher
	quizzes    store.QuizStore
	decks      store.DeckStore
	sink       flashcard.RatingSink
	logger     *slog.Logger

	cardOpts []flashcard.Option

	mu           sync.Mutex
	log          *conversation.Log
	quizEngine   *quiz.Engine
	reviewEngine *quiz.Engine
	deckEngine   *flashcard.Engine

	// preloaded content, populated by Preload
	preloadedQuiz []domain.QuizItem
	preloadedDeck *domain.Deck
}

// newStudySession builds a session for the given subject. Callers go
// through Registry.Create, which validates the subject ID.
func newStudySession(
	session domain.Session,
	dispatcher *dispatch.Dispatcher,
	quizzes store.QuizStore,
	decks store.DeckStore,
	sink flashcard.RatingSink,
	logger *slog.Logger,
	cardOpts []flashcard.Option,
) *StudySession {
	sessionLogger := logger.With(
		slog.String("component", "study_session"),
		slog.String("session_id", session.ID.String()),
	)

	return &StudySession{
		session:    session,
		dispatcher: dispatcher,
		quizzes:    quizzes,
		decks:      decks,
		sink:       sink,
		logger:     sessionLogger,
		cardOpts:   cardOpts,
		log:        conversation.NewLog(sessionLogger),
	}
}

// ID returns the session's unique identifier.
func (s *StudySession) ID() uuid.UUID {
	return s.session.ID
}

// SubjectID returns the subject this session studies.
func (s *StudySession) SubjectID() string {
	return s.session.SubjectID
}

// CreatedAt returns the session creation time.
func (s *StudySession) CreatedAt() time.Time {
	return s.session.CreatedAt
}

// Preload warms the session's quiz and deck content concurrently.
// Missing content is not an error: a subject may have a quiz but no
// deck, or neither. Store failures other than not-found are returned.
func (s *StudySession) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var (
		items []domain.QuizItem
		deck  *domain.Deck
	)

	g.Go(func() error {
		loaded, err := s.quizzes.GetQuiz(ctx, s.session.SubjectID)
		if err != nil {
			if errors.Is(err, store.ErrQuizNotFound) {
				s.logger.Debug("no quiz to preload", slog.String("subject_id", s.session.SubjectID))
				return nil
			}
			return fmt.Errorf("failed to preload quiz: %w", err)
		}
		items = loaded
		return nil
	})

	g.Go(func() error {
		loaded, err := s.decks.GetDeck(ctx, s.session.SubjectID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				s.logger.Debug("no deck to preload", slog.String("subject_id", s.session.SubjectID))
				return nil
			}
			return fmt.Errorf("failed to preload deck: %w", err)
		}
		deck = loaded
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.preloadedQuiz = items
	s.preloadedDeck = deck
	s.mu.Unlock()

	return nil
}

// Ask runs one study task for the session and records it in the
// conversation log. A validation failure returns before any turns are
// appended; otherwise a user turn and a pending assistant turn are
// appended, and the assistant turn is resolved or failed in place once
// the backend answers.
func (s *StudySession) Ask(ctx context.Context, kind domain.TaskKind, question string) (domain.ConversationTurn, error) {
	req := domain.TaskRequest{
		SubjectID: s.session.SubjectID,
		Kind:      kind,
		Question:  question,
	}
	if err := req.Validate(); err != nil {
		return domain.ConversationTurn{}, err
	}

	userContent := question
	if kind != domain.TaskKindQuestionAnswer {
		userContent = string(kind)
	}

	s.mu.Lock()
	s.log.AppendUser(userContent)
	pendingID := s.log.AppendPending()
	s.mu.Unlock()

	result, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.log.Fail(pendingID, failureMessage(kind))
		turn := s.turnByIDLocked(pendingID)
		s.mu.Unlock()
		return turn, err
	}

	s.mu.Lock()
	s.log.Resolve(pendingID, result.Text, result.RenderKind())
	turn := s.turnByIDLocked(pendingID)
	s.mu.Unlock()

	return turn, nil
}

// Turns returns a snapshot of the conversation log.
func (s *StudySession) Turns() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Turns()
}

// StartQuiz loads the subject's quiz and creates a fresh progression
// engine, replacing any previous quiz state for the session.
func (s *StudySession) StartQuiz(ctx context.Context) (*quiz.Engine, error) {
	s.mu.Lock()
	items := s.preloadedQuiz
	s.mu.Unlock()

	if items == nil {
		loaded, err := s.quizzes.GetQuiz(ctx, s.session.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz: %w", err)
		}
		items = loaded
	}

	engine, err := quiz.NewEngine(items)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz engine: %w", err)
	}

	s.mu.Lock()
	s.quizEngine = engine
	s.reviewEngine = nil
	s.mu.Unlock()

	s.logger.Info("quiz started", slog.Int("question_count", len(items)))

	return engine, nil
}

// Quiz returns the session's active quiz engine.
// Returns ErrQuizNotLoaded if StartQuiz has not been called.
func (s *StudySession) Quiz() (*quiz.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quizEngine == nil {
		return nil, ErrQuizNotLoaded
	}
	return s.quizEngine, nil
}

// StartIncorrectReview derives a review sub-session containing only
// the questions missed in the finished quiz.
func (s *StudySession) StartIncorrectReview() (*quiz.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quizEngine == nil {
		return nil, ErrQuizNotLoaded
	}

	review, err := s.quizEngine.ReviewIncorrect()
	if err != nil {
		return nil, err
	}

	s.reviewEngine = review
	s.logger.Info("incorrect-answer review started",
		slog.Int("question_count", len(review.Items())))

	return review, nil
}

// ActiveQuiz returns the engine quiz operations should drive: the
// incorrect-answer review when one is running, otherwise the main
// quiz. Returns ErrQuizNotLoaded if StartQuiz has not been called.
func (s *StudySession) ActiveQuiz() (*quiz.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reviewEngine != nil {
		return s.reviewEngine, nil
	}
	if s.quizEngine == nil {
		return nil, ErrQuizNotLoaded
	}
	return s.quizEngine, nil
}

// Review returns the active incorrect-answer review engine.
// Returns ErrQuizNotLoaded if no review is in progress.
func (s *StudySession) Review() (*quiz.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reviewEngine == nil {
		return nil, ErrQuizNotLoaded
	}
	return s.reviewEngine, nil
}

// StartFlashcards loads the subject's deck and creates a fresh review
// engine, closing any previous one so its timers stop.
func (s *StudySession) StartFlashcards(ctx context.Context) (*flashcard.Engine, error) {
	s.mu.Lock()
	deck := s.preloadedDeck
	s.mu.Unlock()

	if deck == nil {
		loaded, err := s.decks.GetDeck(ctx, s.session.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load deck: %w", err)
		}
		deck = loaded
	}

	engine, err := flashcard.NewEngine(*deck, s.sink, s.logger, s.cardOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard engine: %w", err)
	}

	s.mu.Lock()
	previous := s.deckEngine
	s.deckEngine = engine
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	s.logger.Info("flashcard review started", slog.Int("card_count", len(deck.Cards)))

	return engine, nil
}

// Flashcards returns the session's active flashcard engine.
// Returns ErrDeckNotLoaded if StartFlashcards has not been called.
func (s *StudySession) Flashcards() (*flashcard.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deckEngine == nil {
		return nil, ErrDeckNotLoaded
	}
	return s.deckEngine, nil
}

// Close releases session resources, stopping any flashcard timers.
func (s *StudySession) Close() {
	s.mu.Lock()
	engine := s.deckEngine
	s.deckEngine = nil
	s.mu.Unlock()

	if engine != nil {
		engine.Close()
	}
}

// turnByIDLocked finds a turn snapshot by ID. Caller holds s.mu.
func (s *StudySession) turnByIDLocked(turnID uuid.UUID) domain.ConversationTurn {
	for _, turn := range s.log.Turns() {
		if turn.ID == turnID {
			return turn
		}
	}
	return domain.ConversationTurn{}
}

// failureMessage is the user-facing content written into a failed
// assistant turn. It never includes backend error details.
func failureMessage(kind domain.TaskKind) string {
	switch kind {
	case domain.TaskKindSummary:
		return "Sorry, the summary could not be generated. Please try again."
	case domain.TaskKindMindMap:
		return "Sorry, the mind map could not be generated. Please try again."
	case domain.TaskKindRoadMap:
		return "Sorry, the roadmap could not be generated. Please try again."
	default:
		return "Sorry, the answer could not be generated. Please try again."
	}
}
