package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// SessionStore is the in-process fallback for session records. It has no
// native TTL, so a janitor goroutine actively sweeps expired entries.
// Records are stored marshaled so readers get independent copies, matching
// the redis store's re-fetch semantics.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string]record
	clock   func() time.Time
	stop    chan struct{}
	done    chan struct{}
}

type record struct {
	data      []byte
	expiresAt time.Time
}

// NewSessionStore starts the sweeper at the given interval. Call Stop on
// shutdown.
func NewSessionStore(sweepInterval time.Duration) *SessionStore {
	s := &SessionStore{
		records: make(map[string]record),
		clock:   time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	s.mu.Lock()
	s.records[session.ID] = record{data: data, expiresAt: s.clock().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Find(_ context.Context, sessionID string) (*domain.Session, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok || rec.expiresAt.Before(s.clock()) {
		return nil, false, nil
	}
	var session domain.Session
	if err := json.Unmarshal(rec.data, &session); err != nil {
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, true, nil
}

// Degraded is always true: sessions here do not survive a restart.
func (s *SessionStore) Degraded() bool { return true }

// Cleanup removes every expired record immediately.
func (s *SessionStore) Cleanup() {
	now := s.clock()
	s.mu.Lock()
	for id, rec := range s.records {
		if rec.expiresAt.Before(now) {
			delete(s.records, id)
		}
	}
	s.mu.Unlock()
}

// Stop cancels the sweeper and waits for it to exit.
func (s *SessionStore) Stop() {
	close(s.stop)
	<-s.done
}

func (s *SessionStore) sweep(interval time.Duration) {
	defer close(s.done)
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stop:
			return
		}
	}
}
