package visit

import (
	"context"
	"sync"
)

// SessionStore keeps the active session per kiosk. Sessions are ephemeral:
// process-lifetime only, superseded whenever a new identification begins.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Get returns the session for a kiosk and whether one exists.
func (s *SessionStore) Get(_ context.Context, kioskID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[kioskID]
	return sess, ok
}

// Put stores the session for a kiosk, replacing any previous one.
func (s *SessionStore) Put(_ context.Context, kioskID string, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[kioskID] = sess
}

// Clear removes the session for a kiosk.
func (s *SessionStore) Clear(_ context.Context, kioskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, kioskID)
}
