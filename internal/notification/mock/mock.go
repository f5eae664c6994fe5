package mock

import (
	"context"
	"log/slog"

	"github.com/shibinnakam/cochin-backoffice/internal/notification"
)

// Sender is a sender implementation that logs email and always succeeds.
// Used in development and tests.
type Sender struct {
	logger *slog.Logger
}

// NewSender creates a new mock email sender.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

// Name returns the name of this sender.
func (s *Sender) Name() string {
	return "mock-email"
}

// Send logs the email details instead of delivering anything.
func (s *Sender) Send(ctx context.Context, email *notification.Email) error {
	s.logger.InfoContext(ctx, "mock sender: email sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
