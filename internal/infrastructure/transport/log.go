package transport

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogEmailSender writes emails to the log instead of delivering them.
// Used in development and when the email provider is set to "log".
type LogEmailSender struct {
	logger *zap.Logger
}

func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.logger.Info("Email (log transport)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))
	return nil
}

// LogSMSSender writes SMS messages to the log instead of delivering them
type LogSMSSender struct {
	logger *zap.Logger
}

func NewLogSMSSender(logger *zap.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(ctx context.Context, to, message string) error {
	s.logger.Info("SMS (log transport)",
		zap.String("to", to),
		zap.String("message", message))
	return nil
}

// LogPushSender writes push notifications to the log. There is no real
// push provider yet, so this is the only implementation.
type LogPushSender struct {
	logger *zap.Logger
}

func NewLogPushSender(logger *zap.Logger) *LogPushSender {
	return &LogPushSender{logger: logger}
}

func (s *LogPushSender) SendPush(ctx context.Context, userID uuid.UUID, title, message string) error {
	s.logger.Info("Push (log transport)",
		zap.String("user_id", userID.String()),
		zap.String("title", title),
		zap.String("message", message))
	return nil
}
