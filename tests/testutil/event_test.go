package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	handler := NewMockEventHandler("OrderPlaced", "OrderStatusChanged")
	assert.Equal(t, []string{"OrderPlaced", "OrderStatusChanged"}, handler.EventTypes())

	placed := NewTestEvent("OrderPlaced", 10)
	require.NoError(t, handler.Handle(context.Background(), placed))
	assert.Equal(t, 1, handler.HandledCount())
	assert.Same(t, placed, handler.Handled()[0])

	handler.SetError(assert.AnError)
	assert.ErrorIs(t, handler.Handle(context.Background(), NewTestEvent("OrderStatusChanged", 10)), assert.AnError)
	assert.Equal(t, []string{"OrderPlaced", "OrderStatusChanged"}, handler.HandledTypes())

	handler.Reset()
	assert.Zero(t, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), placed))
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("OrderPlaced", 42)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "OrderPlaced", event.EventType())
	assert.Equal(t, int64(42), event.AggregateID())
	assert.Equal(t, "Order", event.AggregateType())
	assert.False(t, event.OccurredAt().IsZero())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		handler := NewMockEventHandler("OrderPlaced")
		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = handler.Handle(context.Background(), NewTestEvent("OrderPlaced", 1))
			_ = handler.Handle(context.Background(), NewTestEvent("OrderPlaced", 2))
		}()

		assert.True(t, WaitForEventCount(t, handler, 2, time.Second))
	})

	t.Run("condition not met within timeout", func(t *testing.T) {
		assert.False(t, WaitForCondition(t, func() bool { return false }, 30*time.Millisecond, 10*time.Millisecond))
	})
}
