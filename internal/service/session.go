package service

import (
	"errors"
	"sync"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
	removed bool
}

// SessionManager owns every live session. The map lock is never held while
// a session lock is being waited on, so turns for different sessions run
// concurrently.
type SessionManager struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewSessionManager(ttl time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock replaces the time source.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// Acquire returns the session for id locked for exclusive use, creating a
// fresh one under a new id when id is empty, unknown or expired. The caller
// must invoke release when done.
func (m *SessionManager) Acquire(id string) (sess *domain.Session, release func()) {
	for {
		e := m.lookup(id)
		fresh := e == nil
		if fresh {
			e = m.create()
		}

		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}

		now := m.now()
		if !fresh && e.session.Expired(now, m.ttl) {
			m.logger.Info("session expired", zap.String("session_id", e.session.ID))
			m.remove(e)
			e.mu.Unlock()
			id = ""
			continue
		}

		e.session.LastActivity = now
		return e.session, e.mu.Unlock
	}
}

// Lookup locks an existing, unexpired session without creating one.
func (m *SessionManager) Lookup(id string) (*domain.Session, func(), error) {
	e := m.lookup(id)
	if e == nil {
		return nil, nil, ErrSessionNotFound
	}
	e.mu.Lock()
	if e.removed || e.session.Expired(m.now(), m.ttl) {
		e.mu.Unlock()
		return nil, nil, ErrSessionNotFound
	}
	return e.session, e.mu.Unlock, nil
}

// Delete drops a session. It waits for any in-flight turn on it.
func (m *SessionManager) Delete(id string) bool {
	e := m.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}
	m.remove(e)
	return true
}

// Sweep removes sessions idle past the TTL and returns how many were
// dropped. Sessions with a turn in progress are skipped.
func (m *SessionManager) Sweep() int {
	m.mu.RLock()
	candidates := make([]*sessionEntry, 0, len(m.entries))
	for _, e := range m.entries {
		candidates = append(candidates, e)
	}
	m.mu.RUnlock()

	now := m.now()
	removed := 0
	for _, e := range candidates {
		if !e.mu.TryLock() {
			continue
		}
		if !e.removed && e.session.Expired(now, m.ttl) {
			m.remove(e)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *SessionManager) lookup(id string) *sessionEntry {
	if id == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id]
}

func (m *SessionManager) create() *sessionEntry {
	e := &sessionEntry{session: domain.NewSession(uuid.NewString(), m.now())}
	m.mu.Lock()
	m.entries[e.session.ID] = e
	m.mu.Unlock()
	return e
}

// remove must be called with e.mu held.
func (m *SessionManager) remove(e *sessionEntry) {
	e.removed = true
	m.mu.Lock()
	if m.entries[e.session.ID] == e {
		delete(m.entries, e.session.ID)
	}
	m.mu.Unlock()
}
