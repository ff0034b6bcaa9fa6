package gateway

import "sync"

// Registry maps user ids to their live voice sessions. It is owned by the
// Gateway and handed to each connection; there is no package-level state.
//
// At most one session per user id is active at a time. On collision the
// new session wins: Register returns the displaced session so the caller
// can notify and close it (evict-and-notify policy).
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register installs s as the session for its user id and returns the
// session it displaced, if any.
func (r *Registry) Register(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	displaced := r.sessions[s.userID]
	r.sessions[s.userID] = s
	return displaced
}

// Remove deletes the registry entry for s, but only while s is still the
// current occupant: a session displaced by a newer one must not remove
// its replacement during cleanup. Reports whether an entry was removed.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.userID]; ok && current == s {
		delete(r.sessions, s.userID)
		return true
	}
	return false
}

// Get returns the active session for a user id.
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
