/*
store.go - Workspace interface for upload sessions

PURPOSE:
  An upload is viewed, cost-edited and downloaded over several HTTP
  requests. The SessionStore keeps the computed tables between those
  requests. It is a short-lived workspace, not a database of record:
  sessions expire after a TTL and nothing is meant to survive a restart.

KEY INTERFACES:
  SessionStore: save, load, delete and purge upload sessions

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, in-memory by default
  - grid/store/memory.go: plain maps, for tests

SEE ALSO:
  - api/handlers.go: Creates and edits sessions
*/
package grid

import (
	"context"
	"time"
)

// Session is one processed upload.
type Session struct {
	ID        string
	Variant   string
	FileName  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Range     DateRange
	SKUs      []string
	Warnings  []CellCoercionWarning
	Result    []ResultRow
	Edited    bool // costs were overridden at least once
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions for the lifetime of their TTL.
type SessionStore interface {
	// SaveSession inserts or replaces a session.
	SaveSession(ctx context.Context, s Session) error

	// GetSession returns ErrSessionNotFound for unknown or expired ids.
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes a session. Unknown ids are not an error.
	DeleteSession(ctx context.Context, id string) error

	// PurgeExpired drops every session expired at now and returns how many.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
