package domain

import "time"

// EventType identifies a security-relevant action on a user account.
type EventType string

const (
	EventUserRegistered  EventType = "user.registered"
	EventLoginSucceeded  EventType = "login.succeeded"
	EventLoginFailed     EventType = "login.failed"
	EventTokensRefreshed EventType = "tokens.refreshed"
	EventPasswordChanged EventType = "password.changed"
	EventUserDeactivated EventType = "user.deactivated"
)

// UserEvent records a security-relevant action for the audit trail.
// Events are emitted by the transport layer after the fact; the core
// services themselves stay side-effect free.
type UserEvent struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Type      EventType `json:"type"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
