// Package store provides SessionStore implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/sales-grid/grid"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	sessions map[string]grid.Session
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]grid.Session),
		now:      time.Now,
	}
}

// SaveSession stores a copy of s, replacing any session with the same id.
func (m *Memory) SaveSession(_ context.Context, s grid.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*grid.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || s.Expired(m.now()) {
		return nil, grid.ErrSessionNotFound
	}
	out := cloneSession(s)
	return &out, nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *Memory) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Callers edit the returned tables; keep the stored ones private.
func cloneSession(s grid.Session) grid.Session {
	s.SKUs = append([]string(nil), s.SKUs...)
	s.Warnings = append([]grid.CellCoercionWarning(nil), s.Warnings...)
	s.Result = append([]grid.ResultRow(nil), s.Result...)
	return s
}
