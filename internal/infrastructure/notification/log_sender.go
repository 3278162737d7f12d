// Package notification delivers customer messages produced by the
// notification handler.
package notification

import (
	"context"
	"sync"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"go.uber.org/zap"
)

// LogSender writes each message to the structured log instead of sending
// mail. It is the sender used until a mail provider is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("notification")}
}

// Send implements notification.Sender
func (s *LogSender) Send(ctx context.Context, msg appnotification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("Notification sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// RecordingSender keeps messages in memory. Tests and local runs use it to
// inspect what would have been sent.
type RecordingSender struct {
	mu       sync.Mutex
	messages []appnotification.Message
}

// Send implements notification.Sender
func (s *RecordingSender) Send(_ context.Context, msg appnotification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far
func (s *RecordingSender) Messages() []appnotification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appnotification.Message(nil), s.messages...)
}

var (
	_ appnotification.Sender = (*LogSender)(nil)
	_ appnotification.Sender = (*RecordingSender)(nil)
)
