// Package session keeps one ledger per browser session in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"budgeter/internal/cache"
	"budgeter/internal/core"
	"budgeter/internal/log"
)

// CookieName is the cookie carrying the session id.
const CookieName = "budgeter_session"

// Session owns a single Ledger and serialises access to it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	ledger *core.Ledger
}

// New returns a session with a fresh id and an empty ledger.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		ledger:    core.NewLedger(),
	}
}

// Do runs fn with exclusive access to the session's ledger.
func (s *Session) Do(fn func(l *core.Ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ledger)
}

// Store maps session ids to sessions. Idle sessions expire after the TTL and the
// least recently used session is dropped once the store is full.
type Store struct {
	sessions *cache.LRUCache[*Session]
	logger   *log.Logger
}

// NewStore creates a store holding at most maxSessions sessions.
func NewStore(ttl time.Duration, maxSessions int, logger *log.Logger, opts ...cache.Option[*Session]) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSession)

	opts = append([]cache.Option[*Session]{
		cache.WithEvictCallback(func(id string, s *Session) {
			entries := 0
			s.Do(func(l *core.Ledger) { entries = l.Len() })
			logger.Debug("Session expired", log.FieldSessionID, id, "entries", entries)
		}),
	}, opts...)

	return &Store{
		sessions: cache.NewLRUCache[*Session](maxSessions, ttl, opts...),
		logger:   logger,
	}
}

// Get returns the live session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return st.sessions.Get(id)
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	s := New()
	st.sessions.Set(s.ID, s)
	st.logger.Debug("Session created", log.FieldSessionID, s.ID)
	return s, true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.sessions.Size()
}

// CleanExpired implements cache.Cleaner.
func (st *Store) CleanExpired() int {
	return st.sessions.CleanExpired()
}
