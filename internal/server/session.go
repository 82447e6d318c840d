package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sant0-9/reportgenie/internal/pipeline"
)

const sessionCookie = "reportgenie_session"

type sessionEntry struct {
	session  *pipeline.Session
	lastSeen time.Time
}

// sessionStore keeps one pipeline session per browser
type sessionStore struct {
	pipeline *pipeline.Pipeline
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newSessionStore(p *pipeline.Pipeline, ttl time.Duration) *sessionStore {
	return &sessionStore{
		pipeline: p,
		ttl:      ttl,
		sessions: make(map[string]*sessionEntry),
	}
}

// get returns the caller's session, creating it and setting the cookie when
// the request carries none
func (s *sessionStore) get(w http.ResponseWriter, r *http.Request) *pipeline.Session {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session
	}

	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	e := &sessionEntry{
		session:  pipeline.NewSession(s.pipeline),
		lastSeen: time.Now(),
	}
	s.sessions[id] = e
	return e.session
}

// sweep drops idle sessions and returns how many were removed
func (s *sessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if e.session.Busy() || now.Sub(e.lastSeen) < s.ttl {
			continue
		}
		delete(s.sessions, id)
		n++
	}
	return n
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
