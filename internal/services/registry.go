package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BrowserSession groups the per-visitor state the page shell renders.
type BrowserSession struct {
	ID       uuid.UUID
	Analysis AnalysisSession
	Theme    *ThemeState

	lastSeen time.Time
}

type SessionRegistry interface {
	GetOrCreate(id string) (*BrowserSession, bool)
	Get(id uuid.UUID) (*BrowserSession, bool)
	Count() int
	SweepIdle(ttl time.Duration) int
	CloseAll()
}

type sessionRegistry struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*BrowserSession
	newSession func() AnalysisSession
	now        func() time.Time
}

func NewSessionRegistry(newSession func() AnalysisSession) SessionRegistry {
	return &sessionRegistry{
		sessions:   make(map[uuid.UUID]*BrowserSession),
		newSession: newSession,
		now:        time.Now,
	}
}

// GetOrCreate returns the session for a cookie value, creating a fresh one
// when the value is empty, malformed or unknown. The bool reports creation.
func (r *sessionRegistry) GetOrCreate(id string) (*BrowserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if parsed, err := uuid.Parse(id); err == nil {
		if session, ok := r.sessions[parsed]; ok {
			session.lastSeen = r.now()
			return session, false
		}
	}

	session := &BrowserSession{
		ID:       uuid.New(),
		Analysis: r.newSession(),
		Theme:    NewThemeState(),
		lastSeen: r.now(),
	}
	r.sessions[session.ID] = session
	return session, true
}

func (r *sessionRegistry) Get(id uuid.UUID) (*BrowserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if ok {
		session.lastSeen = r.now()
	}
	return session, ok
}

func (r *sessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SweepIdle closes and forgets sessions not seen within ttl.
func (r *sessionRegistry) SweepIdle(ttl time.Duration) int {
	r.mu.Lock()
	var idle []*BrowserSession
	cutoff := r.now().Add(-ttl)
	for id, session := range r.sessions {
		if session.lastSeen.Before(cutoff) {
			idle = append(idle, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range idle {
		session.Analysis.Close()
	}
	return len(idle)
}

func (r *sessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*BrowserSession)
	r.mu.Unlock()

	for _, session := range sessions {
		session.Analysis.Close()
	}
	log.Printf("🧹 Closed %d sessions\n", len(sessions))
}
