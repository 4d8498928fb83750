// Package memory keeps editor sessions in process memory. Sessions are
// working state only and are lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"workflowbuilder/application/session"
	pkgerrors "workflowbuilder/pkg/errors"
)

// SessionRepository is a map of open sessions guarded by a RWMutex
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	limit    int
}

// NewSessionRepository creates a repository holding at most limit sessions.
// A limit of zero or less means unbounded.
func NewSessionRepository(limit int) *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*session.Session), limit: limit}
}

// Save stores s, refusing new sessions beyond the limit
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID()]; !exists && r.limit > 0 && len(r.sessions) >= r.limit {
		return pkgerrors.NewUnavailableError("session capacity").WithDetail("limit", r.limit)
	}
	r.sessions[s.ID()] = s
	return nil
}

// Get returns the session with id
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("session").WithDetail("sessionId", id)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// List returns all sessions, oldest first
func (r *SessionRepository) List(ctx context.Context) ([]*session.Session, error) {
	r.mu.RLock()
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

// Count returns the number of open sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
