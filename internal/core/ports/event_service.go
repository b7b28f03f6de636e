package ports

import (
	"context"

	"github.com/identium/auth-system/internal/core/domain"
)

// EventService records security events emitted by the transport layer.
type EventService interface {
	Record(ctx context.Context, event domain.UserEvent) error
}

// EventRepository persists recorded events to the audit log store.
type EventRepository interface {
	// Append stores the event in the per-user audit trail.
	Append(ctx context.Context, event domain.UserEvent) error
	// Recent returns up to limit most recent events for the user,
	// newest first.
	Recent(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error)
}
