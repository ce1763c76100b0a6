package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"studyhall/internal/domain"
	"studyhall/internal/events"
)

// TaskSubmitter accepts tasks for background processing.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// RatingEventHandler implements the events.EventHandler interface to
// turn rating request events into rating persistence tasks and submit
// them to the runner.
type RatingEventHandler struct {
	factory *RatingTaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

// NewRatingEventHandler creates an event handler that builds rating
// tasks with the given factory and submits them to the provided runner.
func NewRatingEventHandler(
	factory *RatingTaskFactory,
	runner TaskSubmitter,
	logger *slog.Logger,
) *RatingEventHandler {
	return &RatingEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With(slog.String("component", "rating_event_handler")),
	}
}

// Ensure RatingEventHandler implements events.EventHandler
var _ events.EventHandler = (*RatingEventHandler)(nil)

// HandleEvent processes rating request events. Events of other types
// are ignored so additional handlers can share the same emitter.
func (h *RatingEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeRatingPersist {
		h.logger.Debug("ignoring event with unsupported type",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()))
		return nil
	}

	var payload struct {
		CardID     string `json:"card_id"`
		Difficulty int    `json:"difficulty"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	cardID, err := uuid.Parse(payload.CardID)
	if err != nil {
		h.logger.Error("invalid card ID in rating event",
			slog.String("card_id", payload.CardID),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("invalid card ID: %w", err)
	}

	rating := domain.DifficultyRating{
		CardID:     cardID,
		Difficulty: payload.Difficulty,
	}

	t, err := h.factory.CreateTask(rating)
	if err != nil {
		h.logger.Error("failed to create rating task",
			slog.String("card_id", cardID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit rating task",
			slog.String("task_id", t.ID().String()),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("rating task submitted",
		slog.String("task_id", t.ID().String()),
		slog.String("card_id", cardID.String()))

	return nil
}
