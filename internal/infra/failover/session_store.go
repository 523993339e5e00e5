// Package failover keeps gameplay alive when the durable store goes away:
// operations try the primary first and fall back to the secondary, flipping a
// sticky degraded signal the session manager surfaces to callers.
package failover

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

type SessionStore struct {
	primary  app.SessionStore
	fallback app.SessionStore
	degraded atomic.Bool
}

func NewSessionStore(primary, fallback app.SessionStore) *SessionStore {
	return &SessionStore{primary: primary, fallback: fallback}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if err := s.primary.Save(ctx, session, ttl); err != nil {
		s.markDegraded("save", err)
		return s.fallback.Save(ctx, session, ttl)
	}
	if s.degraded.Load() {
		// Keep the fallback copy fresh so reads keep working either way
		// while the primary recovers.
		_ = s.fallback.Save(ctx, session, ttl)
	}
	return nil
}

func (s *SessionStore) Find(ctx context.Context, sessionID string) (*domain.Session, bool, error) {
	session, ok, err := s.primary.Find(ctx, sessionID)
	if err != nil {
		s.markDegraded("find", err)
		return s.fallback.Find(ctx, sessionID)
	}
	if !ok && s.degraded.Load() {
		return s.fallback.Find(ctx, sessionID)
	}
	return session, ok, nil
}

// Degraded stays true once any operation has fallen back; sessions written
// during the outage live only in the fallback, so the warning must persist.
func (s *SessionStore) Degraded() bool {
	return s.degraded.Load() || s.primary.Degraded()
}

func (s *SessionStore) markDegraded(op string, err error) {
	if s.degraded.CompareAndSwap(false, true) {
		log.Printf("session storage degraded (%s): %v", op, err)
	}
}
