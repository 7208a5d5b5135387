package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
)

const defaultMaxSessions = 1000

// ErrNotFound is returned when no session exists under the requested id.
var ErrNotFound = errors.New("session not found")

// Store keeps quoting sessions between requests.
type Store interface {
	Create() (Snapshot, error)
	View(id string, fn func(*Session) error) error
	Update(id string, fn func(*Session) error) (Snapshot, error)
	Delete(id string) error
}

// MemoryStore keeps sessions in-memory and guards access with a RWMutex.
// When full, creating a session evicts the least recently updated one.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	catalog     catalog.Catalog
	clock       func() time.Time
	maxSessions int
}

// StoreOption configures MemoryStore behaviour.
type StoreOption func(*MemoryStore)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// WithMaxSessions bounds the number of live sessions. Values below one keep the default.
func WithMaxSessions(n int) StoreOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// NewMemoryStore creates an empty store pricing sessions against cat.
func NewMemoryStore(cat catalog.Catalog, opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		catalog:  cat,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		maxSessions: defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session with catalog defaults.
func (s *MemoryStore) Create() (Snapshot, error) {
	sess, err := New(uuid.NewString(), s.catalog, s.clock)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[sess.ID()] = sess
	return sess.Snapshot(), nil
}

// View runs fn against a session without modifying it.
func (s *MemoryStore) View(id string, fn func(*Session) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(sess)
}

// Update runs fn against a session under the write lock and returns the
// resulting snapshot. The snapshot is populated even when fn fails, so
// callers can report rejected fields alongside the committed state.
func (s *MemoryStore) Update(id string, fn func(*Session) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	err := fn(sess)
	return sess.Snapshot(), err
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, sess := range s.sessions {
		if oldestID == "" || sess.UpdatedAt().Before(oldestAt) {
			oldestID = id
			oldestAt = sess.UpdatedAt()
		}
	}
	delete(s.sessions, oldestID)
}
