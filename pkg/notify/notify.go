package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers a notification to a recipient. Delivery is
// fire-and-forget: failures are logged by callers, never propagated into a
// lending decision.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender returns a Sender that only records the notification. The
// real email/SMS gateway plugs in behind the same interface.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, recipient, subject, body string) error {
	s.log.Info("Notification dispatched",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
