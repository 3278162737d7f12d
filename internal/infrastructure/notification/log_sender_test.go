package notification

import (
	"context"
	"testing"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	err := sender.Send(context.Background(), appnotification.Message{
		To:      "ann@example.com",
		Subject: "Order Confirmation",
		Body:    "Hello Ann",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("Notification sent").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ann@example.com", fields["to"])
	assert.Equal(t, "Order Confirmation", fields["subject"])
	assert.Equal(t, "notification", entries[0].LoggerName)
}

func TestLogSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewLogSender(nil).Send(ctx, appnotification.Message{To: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordingSender(t *testing.T) {
	s := &RecordingSender{}
	require.NoError(t, s.Send(context.Background(), appnotification.Message{To: "a"}))
	require.NoError(t, s.Send(context.Background(), appnotification.Message{To: "b"}))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[1].To)
}
