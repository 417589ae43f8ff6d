// Package session implements the login gate and the per-caller session
// state. A Session is an explicit value owned by whoever drives the
// interaction (one per REPL); there is no process-wide "current user".
package session

import (
	"time"

	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/google/uuid"
)

// Session is the transient state of one interactive caller. It is never
// persisted; a restart requires logging in again.
type Session struct {
	// ID only correlates log lines; it is not a credential.
	ID            string
	Authenticated bool
	CurrentUser   *directory.UserRecord
	StartedAt     time.Time
}

func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Username returns the logged-in username or "" when anonymous.
func (s *Session) Username() string {
	if s == nil || !s.Authenticated || s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.Username
}

// IsAdmin is the role gate: the only authorization predicate there is.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Authenticated && s.CurrentUser != nil && s.CurrentUser.IsAdmin()
}

func (s *Session) set(u directory.UserRecord, at time.Time) {
	s.Authenticated = true
	s.CurrentUser = &u
	s.StartedAt = at
}

func (s *Session) clear() {
	s.Authenticated = false
	s.CurrentUser = nil
	s.StartedAt = time.Time{}
}
