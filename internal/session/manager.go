package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/pathscript/internal/ctxlog"
)

// Manager keeps the open sessions of one process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager returns a manager with no sessions.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Open creates and registers a new session.
func (m *Manager) Open(ctx context.Context) *Session {
	s := New()

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Session opened.", "session", s.ID().String())
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close discards a session.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s is not open", id)
	}
	ctxlog.FromContext(ctx).Debug("Session closed.", "session", id.String())
	return nil
}
