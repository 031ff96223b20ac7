package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	s := newSession()

	require.NoError(t, s.transition(StateRegistering))
	require.NoError(t, s.transition(StateAuthenticated))
	require.NoError(t, s.transition(StatePendingDeletion))
	require.NoError(t, s.transition(StateReauthRequired))
	require.NoError(t, s.transition(StateDeleting))
	require.NoError(t, s.transition(StateLoggedOut))

	assert.Error(t, s.transition(StateAuthenticated))
	assert.Equal(t, StateLoggedOut, s.state)
}

func TestSessionTransitions_RejectsSkippingLogin(t *testing.T) {
	s := newSession()

	assert.Error(t, s.transition(StateAuthenticated))
	assert.Error(t, s.transition(StatePendingDeletion))
	assert.Equal(t, StateIdle, s.state)
}

func TestSessionStore_ResumeReusesExisting(t *testing.T) {
	st := NewSessionStore()

	first, err := st.Resume(Identity{UID: "u1", Email: "a@x.io", IDToken: "t1"})
	require.NoError(t, err)
	second, err := st.Resume(Identity{UID: "u1", Email: "other@x.io", IDToken: "t2"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, StateAuthenticated, first.state)
	assert.Equal(t, "a@x.io", first.Email)
}

func TestSessionStore_RemoveIgnoresReplacedSession(t *testing.T) {
	st := NewSessionStore()
	old := &Session{UID: "u1"}
	st.Put(old)
	replacement := &Session{UID: "u1"}
	st.Put(replacement)

	st.Remove(old)

	got, ok := st.Get("u1")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestSessionAdopt(t *testing.T) {
	s := &Session{UID: "u1", IDToken: "old"}

	s.adopt(Identity{UID: "u1", Email: "a@x.io", IDToken: ""})
	assert.Equal(t, "old", s.IDToken)
	assert.Equal(t, "a@x.io", s.Email)

	s.adopt(Identity{UID: "u1", Email: "b@x.io", IDToken: "new"})
	assert.Equal(t, "new", s.IDToken)
	assert.Equal(t, "a@x.io", s.Email)
}

func TestSessionStore_ResumeRefusesRetiredBearer(t *testing.T) {
	st := NewSessionStore()
	st.Retire("t1", "")

	_, err := st.Resume(Identity{UID: "u1", Email: "a@x.io", IDToken: "t1"})
	assert.ErrorIs(t, err, ErrSessionEnded)
	_, ok := st.Get("u1")
	assert.False(t, ok, "a retired bearer must not register a session")

	assert.False(t, st.Retired(""))
	s, err := st.Resume(Identity{UID: "u1", Email: "a@x.io", IDToken: "t2"})
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, s.state)
}

func TestSessionStore_RetiredBearerExpires(t *testing.T) {
	st := NewSessionStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	st.Retire("t1")
	assert.True(t, st.Retired("t1"))

	now = now.Add(idTokenLifetime + time.Minute)
	assert.False(t, st.Retired("t1"))

	st.Retire("t2")
	assert.NotContains(t, st.ended, "t1", "expired entries are pruned")
}

func TestSessionStore_PutClearsReissuedToken(t *testing.T) {
	st := NewSessionStore()
	st.Retire("t1")

	st.Put(&Session{UID: "u1", IDToken: "t1", state: StateAuthenticated})

	assert.False(t, st.Retired("t1"))
}
