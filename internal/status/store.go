// Package status owns the process-wide shop status.
//
// Store is the only authoritative copy of domain.StatusState. Every mutation goes through
// Apply (client updates) or Refresh (clock-driven recompute of the derived message).
package status

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swamyhotfoods/shopfront/internal/domain"
)

// MessageFunc derives the advisory message from the open flag and the current instant.
type MessageFunc func(shopOpen bool, now time.Time) string

// Store is the single in-memory copy of the storefront status. The derived message is
// recomputed on every write and on Refresh.
type Store struct {
	mu      sync.Mutex
	state   domain.StatusState
	clock   clockwork.Clock
	message MessageFunc
}

// NewStore creates a store holding the startup defaults (everything off, no texts).
func NewStore(clock clockwork.Clock, message MessageFunc) *Store {
	s := &Store{clock: clock, message: message}
	s.state.DerivedMessage = s.message(s.state.ShopOpen, s.clock.Now())
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.StatusState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply merges a sparse update and recomputes the derived message.
// It returns the resulting snapshot.
func (s *Store) Apply(update domain.StatusUpdate) domain.StatusState {
	s.mu.Lock()
	defer s.mu.Unlock()

	update.ApplyTo(&s.state)
	s.state.DerivedMessage = s.message(s.state.ShopOpen, s.clock.Now())
	return s.state
}

// Refresh recomputes the derived message against the current time.
// changed is true when the message differs from the previous one.
func (s *Store) Refresh() (snapshot domain.StatusState, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.message(s.state.ShopOpen, s.clock.Now())
	changed = msg != s.state.DerivedMessage
	s.state.DerivedMessage = msg
	return s.state, changed
}
