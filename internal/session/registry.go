// ABOUTME: Thread-safe registry of backend sessions this process has provisioned.
// ABOUTME: Purely additive set keyed by (app, user, session); suppresses redundant creation calls.

package session

import (
	"fmt"
	"sync"
)

// Key uniquely identifies a backend conversation session.
type Key struct {
	AppName   string
	UserID    string
	SessionID string
}

// String returns the composite registry key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.AppName, k.UserID, k.SessionID)
}

// Registry tracks which sessions have been confirmed created on the backend.
// It is additive only and never expires entries: membership means "a creation
// call succeeded during this process lifetime". The backend remains the
// source of truth for actual session state, so losing the registry on restart
// merely costs one redundant creation call per key.
type Registry struct {
	mu      sync.RWMutex
	created map[string]struct{}
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		created: make(map[string]struct{}),
	}
}

// Exists reports whether a creation call for key has already succeeded.
func (r *Registry) Exists(key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.created[key.String()]
	return ok
}

// MarkCreated records that a creation call for key succeeded.
func (r *Registry) MarkCreated(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.created[key.String()] = struct{}{}
}

// Len returns the number of sessions provisioned so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.created)
}
