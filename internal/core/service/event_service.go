package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewEventService returns an EventService that appends security events to
// the audit trail store.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log}
}

// Record persists a single security event. Events without a timestamp are
// stamped on arrival; events without a user id are logged but not stored,
// since the audit trail is keyed per user.
func (s *eventService) Record(ctx context.Context, event domain.UserEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if event.UserID == "" {
		s.log.Debug().Str("type", string(event.Type)).Str("username", event.Username).Msg("anonymous event skipped")
		return nil
	}

	if err := s.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Info().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Msg("security event recorded")

	return nil
}
