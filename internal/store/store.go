// Package store holds the client-wide observable state: the mirrored session,
// the authenticated identity, and the loading/error flags.
//
// All mutation goes through the typed entry points below so observers always
// see internally consistent cross-field state; there is no way to poke a
// single session field out from under the rest of a snapshot.
package store

import (
	"sync"

	"github.com/questforge/tabletop-client/internal/session"
)

// State is one consistent view of the client state. Values handed to
// observers are deep copies; mutating them has no effect on the store.
type State struct {
	Session session.Session

	UID     string
	IDToken string

	Loading bool
	Err     string // empty when no error is active
}

// Bound reports whether a session is currently mirrored.
func (s State) Bound() bool { return s.Session.GameID != "" }

// Listener observes every state change. Called synchronously, outside the
// store lock, in subscription order.
type Listener func(State)

type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{listeners: map[int]Listener{}}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener and returns its unsubscribe func.
// Unsubscribing twice is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SetAuth records the authenticated identity.
func (s *Store) SetAuth(uid, idToken string) {
	s.update(func(st *State) {
		st.UID = uid
		st.IDToken = idToken
	})
}

// SetIDToken refreshes the bearer token without touching the uid.
func (s *Store) SetIDToken(idToken string) {
	s.update(func(st *State) { st.IDToken = idToken })
}

// ClearAuth drops the identity. The session mirror is left alone.
func (s *Store) ClearAuth() {
	s.update(func(st *State) {
		st.UID = ""
		st.IDToken = ""
	})
}

// SetGame seeds the session identifiers after create/join, before the first
// snapshot arrives.
func (s *Store) SetGame(gameID, roomID string) {
	s.update(func(st *State) {
		st.Session.GameID = gameID
		st.Session.RoomID = roomID
	})
}

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

// SetError records a user-visible error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	s.update(func(st *State) { st.Err = msg })
}

// ApplySnapshot replaces the whole session mirror in one atomic update,
// clearing the loading flag and any active error. This is the only path by
// which remote state reaches observers.
func (s *Store) ApplySnapshot(sess session.Session) {
	s.update(func(st *State) {
		st.Session = sess.Clone()
		st.Loading = false
		st.Err = ""
	})
}

// ClearSession resets the mirror to its unbound shape. Identity is kept.
func (s *Store) ClearSession() {
	s.update(func(st *State) {
		st.Session = session.Session{}
	})
}

func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.snapshotLocked()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Session = s.state.Session.Clone()
	return snap
}
