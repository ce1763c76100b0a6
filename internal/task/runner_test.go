package task

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhall/internal/domain"
)

// memoryTaskStore is an in-memory TaskStore for runner tests.
type memoryTaskStore struct {
	mu       sync.Mutex
	saved    map[uuid.UUID]Task
	statuses map[uuid.UUID]TaskStatus
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		saved:    make(map[uuid.UUID]Task),
		statuses: make(map[uuid.UUID]TaskStatus),
	}
}

func (s *memoryTaskStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[t.ID()] = t
	s.statuses[t.ID()] = t.Status()
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[taskID] = status
	return nil
}

func (s *memoryTaskStore) GetPendingTasks(_ context.Context) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusPending), nil
}

func (s *memoryTaskStore) GetProcessingTasks(_ context.Context, _ time.Duration) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusProcessing), nil
}

func (s *memoryTaskStore) WithTx(_ *sql.Tx) TaskStore {
	return s
}

func (s *memoryTaskStore) tasksWithStatus(status TaskStatus) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Task
	for id, st := range s.statuses {
		if st == status {
			out = append(out, s.saved[id])
		}
	}
	return out
}

func (s *memoryTaskStore) statusOf(taskID uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[taskID]
}

// countingRatingStore records ratings it receives.
type countingRatingStore struct {
	mu      sync.Mutex
	ratings []domain.DifficultyRating
	err     error
}

func (s *countingRatingStore) RecordRating(_ context.Context, rating domain.DifficultyRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.ratings = append(s.ratings, rating)
	return nil
}

func (s *countingRatingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

func testRating() domain.DifficultyRating {
	return domain.DifficultyRating{CardID: uuid.New(), Difficulty: 3}
}

func TestRunnerExecutesSubmittedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	ratings := &countingRatingStore{}

	runner := NewTaskRunner(store, nil, TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   10,
	}, slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	task, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)

	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		return store.statusOf(task.ID()) == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, ratings.count())
}

func TestRunnerMarksFailedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	ratings := &countingRatingStore{err: assert.AnError}

	runner := NewTaskRunner(store, nil, TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   10,
	}, slog.Default())

	var handlerCalls int
	var mu sync.Mutex
	runner.SetErrorHandler(func(_ Task, _ error) {
		mu.Lock()
		handlerCalls++
		mu.Unlock()
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	task, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)

	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		return store.statusOf(task.ID()) == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, handlerCalls)
}

func TestRunnerRecoversPersistedTasks(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	ratings := &countingRatingStore{}

	// Seed the store as if a previous run died with one pending and
	// one mid-processing task.
	pending, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(context.Background(), pending))

	stuck, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(context.Background(), stuck))
	require.NoError(t, store.UpdateTaskStatus(context.Background(), stuck.ID(), TaskStatusProcessing, ""))

	factory, err := NewRatingTaskFactory(ratings, slog.Default())
	require.NoError(t, err)

	runner := NewTaskRunner(store, factory, TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   10,
	}, slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.Eventually(t, func() bool {
		return ratings.count() == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, TaskStatusCompleted, store.statusOf(pending.ID()))
	assert.Equal(t, TaskStatusCompleted, store.statusOf(stuck.ID()))
}

func TestSubmitFailsWhenQueueFull(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	ratings := &countingRatingStore{}

	// No workers started, so nothing drains the queue.
	runner := NewTaskRunner(store, nil, TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   1,
	}, slog.Default())

	first, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), first))

	second, err := NewRatingPersistTask(testRating(), ratings, slog.Default())
	require.NoError(t, err)
	assert.ErrorIs(t, runner.Submit(context.Background(), second), ErrQueueFull)
}
