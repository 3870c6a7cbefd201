package etrade

import (
	"sync"
	"time"
	_ "time/tzdata" // access tokens expire at US Eastern midnight

	"github.com/dghubble/oauth1"
)

// State is the position of a User in the OAuth1 lifecycle.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingVerifier
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingVerifier:
		return "awaiting_verifier"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// session holds the access token. It only changes through begin, complete,
// abort and clear.
type session struct {
	mu        sync.RWMutex
	state     State
	token     *oauth1.Token
	expiresAt time.Time
}

func (s *session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAuthenticated:
		return ErrAlreadyAuthenticated
	case StateAwaitingVerifier:
		return ErrLoginInProgress
	}
	s.state = StateAwaitingVerifier
	return nil
}

func (s *session) complete(token *oauth1.Token, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.token = token
	s.expiresAt = expiresAt
}

func (s *session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingVerifier {
		s.state = StateUnauthenticated
	}
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.token = nil
	s.expiresAt = time.Time{}
}

// current returns the access token or ErrNotAuthenticated.
func (s *session) current() (*oauth1.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated || s.token == nil {
		return nil, ErrNotAuthenticated
	}
	return s.token, nil
}

func (s *session) snapshot() (State, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.expiresAt
}

var easternLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// nextEasternMidnight returns the first US Eastern midnight strictly after t.
func nextEasternMidnight(t time.Time) time.Time {
	local := t.In(easternLocation)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, easternLocation)
}
