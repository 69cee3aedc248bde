package notify

import (
	"context"
	"fmt"

	"medreminder/internal/domain/recurrence"
	"medreminder/internal/pkg/logger"
)

// LogNotifier writes fired notifications to the log. It is used when no
// push channel is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification title and body.
func (n *LogNotifier) Notify(ctx context.Context, reminderID string, payload recurrence.Payload) error {
	n.log.Info(fmt.Sprintf("NOTIFICATION reminder=%s title=%q body=%q", reminderID, payload.Title, payload.Body))
	return nil
}
