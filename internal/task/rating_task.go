package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"studyhall/internal/domain"
	"studyhall/internal/store"
)

// Common errors
var (
	ErrNilRatingStore = errors.New("rating store cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
)

// ratingPersistPayload represents the serialized data stored in the task
type ratingPersistPayload struct {
	CardID     uuid.UUID `json:"card_id"`
	Difficulty int       `json:"difficulty"`
}

// RatingPersistTask writes one flashcard difficulty rating through the
// rating store. The review engine submits these fire-and-forget; a
// failed write never surfaces to the learner.
type RatingPersistTask struct {
	id      uuid.UUID
	payload ratingPersistPayload
	status  TaskStatus
	ratings store.RatingStore
	logger  *slog.Logger
}

// NewRatingPersistTask creates a task that persists the given rating.
func NewRatingPersistTask(
	rating domain.DifficultyRating,
	ratings store.RatingStore,
	logger *slog.Logger,
) (*RatingPersistTask, error) {
	if ratings == nil {
		return nil, ErrNilRatingStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if err := rating.Validate(); err != nil {
		return nil, err
	}

	return &RatingPersistTask{
		id: uuid.New(),
		payload: ratingPersistPayload{
			CardID:     rating.CardID,
			Difficulty: rating.Difficulty,
		},
		status:  TaskStatusPending,
		ratings: ratings,
		logger:  logger.With(slog.String("component", "rating_persist_task")),
	}, nil
}

// Ensure RatingPersistTask implements the Task interface
var _ Task = (*RatingPersistTask)(nil)

// ID returns the task's unique identifier
func (t *RatingPersistTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *RatingPersistTask) Type() string {
	return TaskTypeRatingPersist
}

// Payload returns the task data serialized as JSON
func (t *RatingPersistTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		// Payload is a fixed struct of a UUID and an int; marshaling
		// cannot fail in practice.
		t.logger.Error("failed to marshal rating payload",
			slog.String("task_id", t.id.String()),
			slog.String("error", err.Error()))
		return nil
	}
	return data
}

// Status returns the current task status
func (t *RatingPersistTask) Status() TaskStatus {
	return t.status
}

// Execute writes the rating through the rating store.
func (t *RatingPersistTask) Execute(ctx context.Context) error {
	rating := domain.DifficultyRating{
		CardID:     t.payload.CardID,
		Difficulty: t.payload.Difficulty,
	}

	if err := t.ratings.RecordRating(ctx, rating); err != nil {
		return fmt.Errorf("failed to record rating for card %s: %w", rating.CardID, err)
	}

	t.logger.Debug("rating persisted",
		slog.String("card_id", rating.CardID.String()),
		slog.Int("difficulty", rating.Difficulty))

	return nil
}

// RatingTaskFactory creates rating persistence tasks with their
// dependencies attached. It also hydrates recovered tasks loaded from
// the database.
type RatingTaskFactory struct {
	ratings store.RatingStore
	logger  *slog.Logger
}

// NewRatingTaskFactory creates a new RatingTaskFactory.
func NewRatingTaskFactory(ratings store.RatingStore, logger *slog.Logger) (*RatingTaskFactory, error) {
	if ratings == nil {
		return nil, ErrNilRatingStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &RatingTaskFactory{
		ratings: ratings,
		logger:  logger,
	}, nil
}

// CreateTask builds a new rating persistence task for the given rating.
func (f *RatingTaskFactory) CreateTask(rating domain.DifficultyRating) (Task, error) {
	return NewRatingPersistTask(rating, f.ratings, f.logger)
}

// Ensure RatingTaskFactory implements the Hydrator interface
var _ Hydrator = (*RatingTaskFactory)(nil)

// Hydrate rebuilds an executable rating task from a persisted one.
func (f *RatingTaskFactory) Hydrate(t Task) (Task, error) {
	if t.Type() != TaskTypeRatingPersist {
		return nil, fmt.Errorf("unknown task type %q", t.Type())
	}

	var payload ratingPersistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rating payload: %w", err)
	}

	return &RatingPersistTask{
		id:      t.ID(),
		payload: payload,
		status:  t.Status(),
		ratings: f.ratings,
		logger:  f.logger.With(slog.String("component", "rating_persist_task")),
	}, nil
}
