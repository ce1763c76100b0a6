package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures events and optionally fails.
type recordingHandler struct {
	received []*TaskRequestEvent
	err      error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func TestNewTaskRequestEventSerializesPayload(t *testing.T) {
	t.Parallel()

	event, err := NewTaskRequestEvent("rating_persist", map[string]any{
		"card_id":    "e7a7ab3c-1111-4222-8333-444455556666",
		"difficulty": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "rating_persist", event.Type)
	assert.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")

	var decoded struct {
		CardID     string `json:"card_id"`
		Difficulty int    `json:"difficulty"`
	}
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "e7a7ab3c-1111-4222-8333-444455556666", decoded.CardID)
	assert.Equal(t, 4, decoded.Difficulty)
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(slog.Default())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTaskRequestEvent("rating_persist", map[string]int{"difficulty": 3})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(slog.Default())
	failing := &recordingHandler{err: errors.New("handler broke")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewTaskRequestEvent("rating_persist", map[string]int{"difficulty": 2})
	require.NoError(t, err)

	emitErr := emitter.EmitEvent(context.Background(), event)
	assert.ErrorContains(t, emitErr, "handler broke")
	assert.Len(t, healthy.received, 1, "remaining handlers should still receive the event")
}

func TestEmitEventWithoutHandlersIsNoOp(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(slog.Default())
	event, err := NewTaskRequestEvent("rating_persist", nil)
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}
