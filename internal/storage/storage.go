package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

// SessionStore keeps gallery sessions in memory.
type SessionStore struct {
	sessions map[string]*gallery.Session
	resolver *resolver.Resolver
	mu       sync.RWMutex
}

// New creates a store whose sessions resolve fields with r. A nil resolver
// uses the defaults.
func New(r *resolver.Resolver) *SessionStore {
	if r == nil {
		r = resolver.New()
	}
	return &SessionStore{
		sessions: make(map[string]*gallery.Session),
		resolver: r,
	}
}

// Create starts a new empty session.
func (s *SessionStore) Create() *gallery.Session {
	session := gallery.NewSession(uuid.NewString(), s.resolver)
	s.Set(session.ID, session)
	return session
}

func (s *SessionStore) Get(sessionID string) (*gallery.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *gallery.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// List returns every session, oldest first.
func (s *SessionStore) List() []*gallery.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*gallery.Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session and reports whether it existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}
