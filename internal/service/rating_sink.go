package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studyhall/internal/domain"
	"studyhall/internal/events"
	"studyhall/internal/flashcard"
	"studyhall/internal/task"
)

// EventRatingSink forwards flashcard difficulty ratings to the event
// emitter as task request events. The task layer picks them up and
// persists them in the background, keeping the review engine free of
// any storage dependency.
type EventRatingSink struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewEventRatingSink creates a rating sink backed by the given emitter.
func NewEventRatingSink(emitter events.EventEmitter, logger *slog.Logger) (*EventRatingSink, error) {
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &EventRatingSink{
		emitter: emitter,
		logger:  logger.With(slog.String("component", "rating_sink")),
	}, nil
}

// Ensure EventRatingSink implements flashcard.RatingSink
var _ flashcard.RatingSink = (*EventRatingSink)(nil)

// RecordRating emits a rating persistence event.
func (s *EventRatingSink) RecordRating(ctx context.Context, rating domain.DifficultyRating) error {
	event, err := events.NewTaskRequestEvent(task.TaskTypeRatingPersist, map[string]any{
		"card_id":    rating.CardID.String(),
		"difficulty": rating.Difficulty,
	})
	if err != nil {
		return fmt.Errorf("failed to build rating event: %w", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to emit rating event: %w", err)
	}

	s.logger.Debug("rating event emitted",
		slog.String("card_id", rating.CardID.String()),
		slog.Int("difficulty", rating.Difficulty))

	return nil
}
