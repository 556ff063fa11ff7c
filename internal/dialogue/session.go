package dialogue

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
	ErrEmptyAnswer     = errors.New("empty answer")
)

// Participant is the slice of participant identity the engine needs for
// prompting. All fields are rendered into the system prompt.
type Participant struct {
	ID          string
	Name        string
	Gender      string
	Birthday    string
	Personality string
	CoupleID    string
}

// Exchange is one completed round: the user's utterance and the coach's
// feedback for a given question.
type Exchange struct {
	Round         int
	QuestionIndex int
	Utterance     string
	Feedback      string
	Probes        int
}

// Session holds the round state for one reflection dialogue. All mutation
// happens under mu, held for the full duration of an advance so rounds within
// a session are strictly ordered.
type Session struct {
	mu sync.Mutex

	Token   uuid.UUID
	User    Participant
	Partner *Participant // nil when the user has no partner

	QuestionIndex int // 0..4
	ProbesUsed    int // 0..2, for the current question
	RoundCount    int // 0..10
	Terminated    bool

	Exchanges      []Exchange
	ClosingSummary string

	lastActive time.Time
}

// PartnerName returns the partner's display name or the no-information
// sentinel.
func (s *Session) PartnerName() string {
	if s.Partner == nil {
		return NoInformation
	}
	return s.Partner.Name
}

// Transcript renders the session as alternating coach/user lines.
func (s *Session) Transcript() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Coach: %s\n", openingMessage(s.User.Name))
	for _, ex := range s.Exchanges {
		fmt.Fprintf(&b, "User: %s\n", ex.Utterance)
		fmt.Fprintf(&b, "Coach: %s\n", ex.Feedback)
	}
	return b.String()
}

// Snapshot is an immutable copy of a session's outcome, taken at finalize
// time.
type Snapshot struct {
	Token          uuid.UUID
	UserID         string
	PartnerID      string // "" when no partner
	Transcript     string
	Exchanges      []Exchange
	RoundCount     int
	ClosingSummary string
}

func (s *Session) snapshot() Snapshot {
	partnerID := ""
	if s.Partner != nil {
		partnerID = s.Partner.ID
	}
	exchanges := make([]Exchange, len(s.Exchanges))
	copy(exchanges, s.Exchanges)
	return Snapshot{
		Token:          s.Token,
		UserID:         s.User.ID,
		PartnerID:      partnerID,
		Transcript:     s.Transcript(),
		Exchanges:      exchanges,
		RoundCount:     s.RoundCount,
		ClosingSummary: s.ClosingSummary,
	}
}

// SessionStore keeps live sessions in process memory, keyed by opaque token.
// It is the only shared mutable resource in the core; writes are serialized
// per key via each session's own lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (st *SessionStore) put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.Token] = s
}

func (st *SessionStore) get(token uuid.UUID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session, typically after its snapshot has been persisted.
func (st *SessionStore) Delete(token uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PruneIdle evicts sessions that have seen no activity for longer than
// maxIdle and returns how many were removed. Unsaved state is lost, which is
// acceptable: session lifetime is process-memory-bound by contract.
func (st *SessionStore) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	var idle []uuid.UUID
	for _, s := range candidates {
		// A session mid-advance is busy, not idle; skip it rather than
		// block the store behind its model call.
		if !s.mu.TryLock() {
			continue
		}
		if s.lastActive.Before(cutoff) {
			idle = append(idle, s.Token)
		}
		s.mu.Unlock()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	pruned := 0
	for _, token := range idle {
		if _, ok := st.sessions[token]; ok {
			delete(st.sessions, token)
			pruned++
		}
	}
	return pruned
}
