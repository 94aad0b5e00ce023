package app

import (
	"sync"
	"time"
)

// SessionState is the per-session, process-local state the client works with.
// It is created on first use and dropped on sign-out or idle expiry.
type SessionState struct {
	Shortlist *ShortlistStore
	Feed      *SuggestionFeed

	lastUsed time.Time
}

type SessionRegistry struct {
	places *PlaceSuggestionService
	now    func() time.Time

	mu     sync.Mutex
	states map[string]*SessionState
}

func NewSessionRegistry(places *PlaceSuggestionService) *SessionRegistry {
	return &SessionRegistry{places: places, now: time.Now, states: make(map[string]*SessionState)}
}

func (r *SessionRegistry) State(sessionID string) *SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[sessionID]
	if !ok {
		st = &SessionState{Shortlist: NewShortlistStore(), Feed: NewSuggestionFeed(r.places)}
		r.states[sessionID] = st
	}
	st.lastUsed = r.now()
	return st
}

// Touch marks the session as active without creating state for it.
func (r *SessionRegistry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[sessionID]; ok {
		st.lastUsed = r.now()
	}
}

func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[sessionID]; ok {
		st.Feed.Clear()
		delete(r.states, sessionID)
	}
}

// Prune drops states untouched for longer than idle and returns how many went.
func (r *SessionRegistry) Prune(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for id, st := range r.states {
		if st.lastUsed.Before(cutoff) {
			st.Feed.Clear()
			delete(r.states, id)
			n++
		}
	}
	return n
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
