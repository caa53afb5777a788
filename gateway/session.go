package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// AuthSession is the explicit session context injected into the gateway
// and the settlement orchestrator. Its lifecycle is tied to sign-in and
// sign-out; nothing reads tokens from ambient state.
type AuthSession struct {
	Token string
	Email string
	// ExpectedAddress is the wallet address recorded on the resident's
	// profile. Settlements must be signed with exactly this account.
	ExpectedAddress string
	Expiry          time.Time
}

func (s *AuthSession) Expired() bool {
	return !s.Expiry.IsZero() && time.Now().After(s.Expiry)
}

// SessionRegistry holds live sessions keyed by opaque session id.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*AuthSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*AuthSession)}
}

func (r *SessionRegistry) Put(id string, s *AuthSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

// Get returns the session, dropping it when expired.
func (r *SessionRegistry) Get(id string) (*AuthSession, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.Expired() {
		r.Delete(id)
		return nil, false
	}
	return s, true
}

// Sessions returns every live session, pruning expired entries. Background
// sweeps act on behalf of each signed-in resident through these.
func (r *SessionRegistry) Sessions() []*AuthSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*AuthSession, 0, len(r.sessions))
	for id, s := range r.sessions {
		if s.Expired() {
			delete(r.sessions, id)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// NewSessionID returns an opaque random session id.
func NewSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
