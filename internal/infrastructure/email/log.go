package email

import (
	"context"
	"fmt"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/config"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of sending them. Used in
// development and whenever no provider is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{logger: log}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger.Enrich(ctx, s.logger).Info("email not sent, log provider",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)),
	)
	return nil
}

// NewSender picks the sender named by cfg.Provider. Without an API key the
// resend provider falls back to logging.
func NewSender(cfg config.EmailConfig, log *zap.Logger) (shared.EmailSink, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			sender := NewLogSender(log)
			sender.logger.Warn("resend api key missing, emails will only be logged")
			return sender, nil
		}
		return NewResendSender(cfg)
	case "", "log":
		return NewLogSender(log), nil
	}
	return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
}

var _ shared.EmailSink = (*LogSender)(nil)
