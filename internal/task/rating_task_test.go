package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhall/internal/domain"
	"studyhall/internal/events"
)

func TestNewRatingPersistTaskValidation(t *testing.T) {
	t.Parallel()

	ratings := &countingRatingStore{}

	_, err := NewRatingPersistTask(testRating(), nil, slog.Default())
	assert.ErrorIs(t, err, ErrNilRatingStore)

	_, err = NewRatingPersistTask(testRating(), ratings, nil)
	assert.ErrorIs(t, err, ErrNilLogger)

	_, err = NewRatingPersistTask(domain.DifficultyRating{CardID: uuid.New(), Difficulty: 9}, ratings, slog.Default())
	assert.Error(t, err)
}

func TestRatingPersistTaskRoundTripsThroughPayload(t *testing.T) {
	t.Parallel()

	ratings := &countingRatingStore{}
	rating := testRating()

	original, err := NewRatingPersistTask(rating, ratings, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeRatingPersist, original.Type())
	assert.Equal(t, TaskStatusPending, original.Status())

	var payload struct {
		CardID     uuid.UUID `json:"card_id"`
		Difficulty int       `json:"difficulty"`
	}
	require.NoError(t, json.Unmarshal(original.Payload(), &payload))
	assert.Equal(t, rating.CardID, payload.CardID)
	assert.Equal(t, rating.Difficulty, payload.Difficulty)

	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	hydrated, err := factory.Hydrate(original)
	require.NoError(t, err)
	assert.Equal(t, original.ID(), hydrated.ID())

	require.NoError(t, hydrated.Execute(context.Background()))
	require.Len(t, ratings.ratings, 1)
	assert.Equal(t, rating, ratings.ratings[0])
}

func TestHydrateRejectsUnknownTaskType(t *testing.T) {
	t.Parallel()

	ratings := &countingRatingStore{}
	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	unknown := &staticTask{id: uuid.New(), taskType: "summary_warmup"}
	_, err = factory.Hydrate(unknown)
	assert.ErrorContains(t, err, "unknown task type")
}

// staticTask is a minimal Task for hydration tests.
type staticTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
}

func (t *staticTask) ID() uuid.UUID                 { return t.id }
func (t *staticTask) Type() string                  { return t.taskType }
func (t *staticTask) Payload() []byte               { return t.payload }
func (t *staticTask) Status() TaskStatus            { return TaskStatusPending }
func (t *staticTask) Execute(context.Context) error { return nil }

func TestRatingEventHandlerSubmitsTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	ratings := &countingRatingStore{}

	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	runner := NewTaskRunner(store, factory, TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   10,
	}, slog.Default())
	handler := NewRatingEventHandler(factory, runner, slog.Default())

	rating := testRating()
	event, err := events.NewTaskRequestEvent(TaskTypeRatingPersist, map[string]any{
		"card_id":    rating.CardID.String(),
		"difficulty": rating.Difficulty,
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	// The task is saved even before any worker runs.
	pending, err := store.GetPendingTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRatingEventHandlerIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	ratings := &countingRatingStore{}
	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	store := newMemoryTaskStore()
	runner := NewTaskRunner(store, factory, DefaultTaskRunnerConfig(), slog.Default())
	handler := NewRatingEventHandler(factory, runner, slog.Default())

	event, err := events.NewTaskRequestEvent("summary_warmup", nil)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	pending, err := store.GetPendingTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRatingEventHandlerRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	ratings := &countingRatingStore{}
	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	store := newMemoryTaskStore()
	runner := NewTaskRunner(store, factory, DefaultTaskRunnerConfig(), slog.Default())
	handler := NewRatingEventHandler(factory, runner, slog.Default())

	event, err := events.NewTaskRequestEvent(TaskTypeRatingPersist, map[string]any{
		"card_id":    "not-a-uuid",
		"difficulty": 3,
	})
	require.NoError(t, err)

	assert.ErrorContains(t, handler.HandleEvent(context.Background(), event), "invalid card ID")
}
