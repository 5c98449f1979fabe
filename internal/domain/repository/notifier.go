package repository

import "fieldos-dispatch/internal/domain/entity"

// Notifier delivers transient user-facing notices (toast-style). Failures of
// remote calls are notified once and otherwise swallowed; nothing is retried.
type Notifier interface {
	Notify(n entity.Notification)
}
