// Package session keeps the in-progress dialog state for each
// conversation. Sessions are never persisted: a process restart drops
// them, which is a documented limitation rather than a defect.
package session

import "sync"

// Flow identifies which dialog a session is running.
type Flow string

const (
	FlowBooking      Flow = "booking"
	FlowCancellation Flow = "cancellation"
)

// Step is the current position inside a flow. The step constants live
// in the booking package next to the transition table.
type Step string

// Session is the mutable record of one conversation's dialog. Handlers
// must hold mu while reading or mutating it so a double-sent message
// cannot race a step advance.
type Session struct {
	ConversationID int64
	Flow           Flow
	Step           Step

	Name     string
	Phone    string
	Service  string
	Price    float64
	Date     string
	BarberID string
	Time     string

	mu sync.Mutex
}

// Lock serializes handling for this conversation.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-conversation lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Store maps conversation ids to active sessions. Access for different
// conversations is independent; the store mutex only guards the map
// itself.
type Store struct {
	mu sync.Mutex
	m  map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{m: make(map[int64]*Session)}
}

// Get returns the active session for a conversation, or nil.
func (st *Store) Get(conversationID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.m[conversationID]
}

// Start replaces any active session with a fresh one for the given
// flow at the given step. Starting a new flow discards the old session.
func (st *Store) Start(conversationID int64, flow Flow, step Step) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{ConversationID: conversationID, Flow: flow, Step: step}
	st.m[conversationID] = s
	return s
}

// Delete removes a conversation's session, if any.
func (st *Store) Delete(conversationID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.m, conversationID)
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.m)
}
