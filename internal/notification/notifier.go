// Package notification provides the outbound messaging adapters. Delivery
// is best effort: the trackers log failures and move on, so none of these
// adapters may block correctness of the accrual path.
package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log. It is the dev
// mode and test fallback when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.logger.Info("notification",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}
