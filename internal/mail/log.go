package mail

import (
	"context"

	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
)

// LogSender logs deliveries instead of sending them.
// Useful for development and testing.
type LogSender struct {
	logger logger.LoggerInterface
}

func NewLogSender(log logger.LoggerInterface) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Send(ctx context.Context, server Server, env Envelope) error {
	s.logger.With(
		"server", server.String(),
		"from", env.From,
		"to", env.To,
		"subject", env.Subject,
		"bytes", len(env.Attachment),
	).Infof("EMAIL (dev mode - not actually sent): %s", env.Filename)
	return nil
}
