package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"giveget/internal/domain/entity"
)

type AccountState string

const (
	StateIdle            AccountState = "idle"
	StateRegistering     AccountState = "registering"
	StateLoginInProgress AccountState = "login_in_progress"
	StateAuthenticated   AccountState = "authenticated"
	StatePendingDeletion AccountState = "pending_deletion"
	StateReauthRequired  AccountState = "reauth_required"
	StateDeleting        AccountState = "deleting"
	StateLoggedOut       AccountState = "logged_out"
)

var transitions = map[AccountState][]AccountState{
	StateIdle:            {StateRegistering, StateLoginInProgress},
	StateRegistering:     {StateAuthenticated, StateIdle},
	StateLoginInProgress: {StateAuthenticated, StateIdle},
	StateAuthenticated:   {StatePendingDeletion, StateLoggedOut},
	StatePendingDeletion: {StateReauthRequired, StateAuthenticated, StateLoggedOut},
	StateReauthRequired:  {StateDeleting, StateAuthenticated, StateLoggedOut},
	StateDeleting:        {StateReauthRequired, StateAuthenticated, StateLoggedOut},
}

func canTransition(from, to AccountState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the server-side view of one signed-in client.
type Session struct {
	UID     string
	Email   string
	IDToken string
	Profile *entity.Profile

	state AccountState
	mutex sync.Mutex
}

func newSession() *Session {
	return &Session{state: StateIdle}
}

// Identity is a verified bearer presented with a request.
type Identity struct {
	UID     string
	Email   string
	IDToken string
}

// adopt refreshes the session from the caller's current bearer. Callers
// hold s.mutex.
func (s *Session) adopt(id Identity) {
	if id.IDToken != "" {
		s.IDToken = id.IDToken
	}
	if s.Email == "" {
		s.Email = id.Email
	}
}

func (s *Session) transition(to AccountState) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("invalid account transition %s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

// ErrSessionEnded is returned for a bearer that was retired by a logout or a
// completed account deletion.
var ErrSessionEnded = errors.New("session has ended")

// idTokenLifetime bounds how long a retired bearer could still verify.
const idTokenLifetime = time.Hour

// SessionStore holds at most one session per identity, plus the bearers of
// sessions that have ended.
type SessionStore struct {
	sessions map[string]*Session
	ended    map[string]time.Time
	now      func() time.Time
	mutex    sync.Mutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ended:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// Retire refuses the given bearers until they would have expired anyway.
func (st *SessionStore) Retire(idTokens ...string) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	now := st.now()
	for token, expiry := range st.ended {
		if now.After(expiry) {
			delete(st.ended, token)
		}
	}
	for _, token := range idTokens {
		if token != "" {
			st.ended[token] = now.Add(idTokenLifetime)
		}
	}
}

// Retired reports whether idToken belongs to a session that has ended.
func (st *SessionStore) Retired(idToken string) bool {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return st.retired(idToken)
}

func (st *SessionStore) retired(idToken string) bool {
	if idToken == "" {
		return false
	}
	expiry, ok := st.ended[idToken]
	return ok && !st.now().After(expiry)
}

func (st *SessionStore) Get(uid string) (*Session, bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	s, ok := st.sessions[uid]
	return s, ok
}

// Put registers s for its uid. The token it carries was just issued, so it
// is no longer treated as retired.
func (st *SessionStore) Put(s *Session) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.sessions[s.UID] = s
	delete(st.ended, s.IDToken)
}

// Remove drops the session only if it is still the one registered for its uid.
func (st *SessionStore) Remove(s *Session) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	if cur, ok := st.sessions[s.UID]; ok && cur == s {
		delete(st.sessions, s.UID)
	}
}

// Resume returns the stored session for the caller, or registers a new
// authenticated one for a bearer that was verified upstream. A retired bearer
// never gets a session back.
func (st *SessionStore) Resume(id Identity) (*Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if st.retired(id.IDToken) {
		return nil, ErrSessionEnded
	}
	if s, ok := st.sessions[id.UID]; ok {
		return s, nil
	}

	s := &Session{UID: id.UID, Email: id.Email, state: StateAuthenticated}
	st.sessions[id.UID] = s
	return s, nil
}
