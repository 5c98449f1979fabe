package notifier

import (
	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
)

// LogNotifier delivers transient notices through the structured log. A push
// transport to the dashboard can replace it behind the same port.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(log logger.Logger) repository.Notifier {
	return &LogNotifier{logger: log}
}

// Notify emits one notice
func (n *LogNotifier) Notify(notice entity.Notification) {
	switch notice.Severity {
	case entity.SeverityError:
		n.logger.Error("Notification", "message", notice.Message, "occurredAt", notice.OccurredAt)
	default:
		n.logger.Info("Notification", "message", notice.Message, "occurredAt", notice.OccurredAt)
	}
}
