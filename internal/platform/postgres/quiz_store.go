package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/domain"
	"studyhall/internal/platform/logger"
	"studyhall/internal/store"
)

// PostgresQuizStore implements the store.QuizStore interface
// using a PostgreSQL database as the storage backend.
//
// Question rows carry the correct answer as a zero-based index into the
// options array; the store translates between that representation and
// the option text the progression engine compares against.
type PostgresQuizStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuizStore creates a new PostgreSQL implementation of the
// QuizStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresQuizStore(db store.DBTX, logger *slog.Logger) *PostgresQuizStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC: constructor enforcing required dependency
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuizStore{
		db:     db,
		logger: logger.With(slog.String("component", "quiz_store")),
	}
}

// Ensure PostgresQuizStore implements store.QuizStore interface
var _ store.QuizStore = (*PostgresQuizStore)(nil)

// WithTx implements store.QuizStore.WithTx
func (s *PostgresQuizStore) WithTx(tx *sql.Tx) store.QuizStore {
	return &PostgresQuizStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetQuiz implements store.QuizStore.GetQuiz
// It retrieves the ordered question list for a subject.
// Returns store.ErrQuizNotFound if the subject has no quiz.
func (s *PostgresQuizStore) GetQuiz(ctx context.Context, subjectID string) ([]domain.QuizItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var quizID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM quizzes WHERE subject_id = $1`,
		subjectID,
	).Scan(&quizID)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: subject %q", store.ErrQuizNotFound, subjectID)
		}
		log.Error("failed to look up quiz",
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, options, correct_answer, explanation
		 FROM quiz_questions
		 WHERE quiz_id = $1
		 ORDER BY position ASC`,
		quizID,
	)
	if err != nil {
		log.Error("failed to query quiz questions",
			slog.String("quiz_id", quizID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.QuizItem
	for rows.Next() {
		var (
			item       domain.QuizItem
			rawOptions []byte
			correctIdx int
		)
		if err := rows.Scan(&item.Question, &rawOptions, &correctIdx, &item.Explanation); err != nil {
			return nil, MapError(err)
		}

		if err := json.Unmarshal(rawOptions, &item.Options); err != nil {
			return nil, fmt.Errorf("%w: malformed options for quiz %s: %v",
				store.ErrInvalidEntity, quizID, err)
		}

		if correctIdx < 0 || correctIdx >= len(item.Options) {
			return nil, fmt.Errorf("%w: correct answer index %d out of range for quiz %s",
				store.ErrInvalidEntity, correctIdx, quizID)
		}
		item.CorrectOption = item.Options[correctIdx]

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("loaded quiz",
		slog.String("subject_id", subjectID),
		slog.Int("question_count", len(items)))

	return items, nil
}

// SaveQuiz implements store.QuizStore.SaveQuiz
// It replaces the question list for a subject. The existing questions
// are removed and the new list inserted, so the method must run inside
// a transaction (use WithTx with store.RunInTransaction).
func (s *PostgresQuizStore) SaveQuiz(ctx context.Context, subjectID string, items []domain.QuizItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", store.ErrInvalidEntity, i, err)
		}
		if indexOfOption(item.Options, item.CorrectOption) < 0 {
			return fmt.Errorf("%w: question %d: correct option not among options",
				store.ErrInvalidEntity, i)
		}
	}

	var quizID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quizzes (id, subject_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (subject_id) DO UPDATE SET subject_id = EXCLUDED.subject_id
		 RETURNING id`,
		uuid.New(), subjectID, time.Now().UTC(),
	).Scan(&quizID)
	if err != nil {
		log.Error("failed to upsert quiz",
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_questions WHERE quiz_id = $1`, quizID); err != nil {
		return MapError(err)
	}

	for i, item := range items {
		options, err := json.Marshal(item.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options for question %d: %w", i, err)
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO quiz_questions (id, quiz_id, position, question, options, correct_answer, explanation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), quizID, i, item.Question, options,
			indexOfOption(item.Options, item.CorrectOption), item.Explanation,
		)
		if err != nil {
			log.Error("failed to insert quiz question",
				slog.String("quiz_id", quizID.String()),
				slog.Int("position", i),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}

	log.Debug("saved quiz",
		slog.String("subject_id", subjectID),
		slog.Int("question_count", len(items)))

	return nil
}

// indexOfOption returns the index of the first option equal to target,
// or -1 when absent.
func indexOfOption(options []string, target string) int {
	for i, opt := range options {
		if opt == target {
			return i
		}
	}
	return -1
}
