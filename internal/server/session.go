// Package server provides the visitor sessions, page state and WebSocket
// command handling behind the hotel site.
package server

import (
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookieName = "hotelsite_session"
	sessionDuration   = 24 * time.Hour
)

// Visitor is a browser session. It outlives the page connections so state
// such as the preloader flag carries across navigations.
type Visitor struct {
	ID string

	expiresAt      atomic.Int64 // unix nanoseconds
	preloaderShown atomic.Bool
}

// PreloaderShown reports whether the visitor already saw the preloader.
func (v *Visitor) PreloaderShown() bool {
	return v.preloaderShown.Load()
}

// MarkPreloaderShown records that the preloader completed for this visitor.
func (v *Visitor) MarkPreloaderShown() {
	v.preloaderShown.Store(true)
}

func (v *Visitor) expired(now time.Time) bool {
	return now.UnixNano() > v.expiresAt.Load()
}

func (v *Visitor) touch(now time.Time) {
	v.expiresAt.Store(now.Add(sessionDuration).UnixNano())
}

// SessionManager tracks visitor sessions keyed by cookie.
type SessionManager struct {
	sessions map[string]*Visitor
	mu       sync.RWMutex
	now      func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Visitor),
		now:      time.Now,
	}
}

// Create starts a new visitor session.
func (sm *SessionManager) Create() *Visitor {
	now := sm.now()
	v := &Visitor{ID: uuid.NewString()}
	v.touch(now)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Only clean up occasionally (roughly 10% of calls)
	if rand.IntN(10) == 0 {
		for id, s := range sm.sessions {
			if s.expired(now) {
				delete(sm.sessions, id)
			}
		}
	}

	sm.sessions[v.ID] = v
	return v
}

// Lookup returns the visitor for a session id, extending its lifetime.
func (sm *SessionManager) Lookup(id string) (*Visitor, bool) {
	if id == "" {
		return nil, false
	}

	sm.mu.RLock()
	v, exists := sm.sessions[id]
	sm.mu.RUnlock()
	if !exists {
		return nil, false
	}

	now := sm.now()
	if v.expired(now) {
		sm.Delete(id)
		return nil, false
	}
	v.touch(now)
	return v, true
}

// Delete removes a session.
func (sm *SessionManager) Delete(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// FromRequest returns the visitor named by the request cookie, if any.
func (sm *SessionManager) FromRequest(r *http.Request) (*Visitor, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, false
	}
	return sm.Lookup(cookie.Value)
}

// Ensure returns the request's visitor, creating one and setting the cookie
// when the request has no valid session.
func (sm *SessionManager) Ensure(w http.ResponseWriter, r *http.Request) *Visitor {
	if v, ok := sm.FromRequest(r); ok {
		return v
	}

	v := sm.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    v.ID,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}
