// Package profile implements the user-profile collaborator the session
// engine consumes: the accessibility timer multiplier and the one-shot
// end-of-round progression award. The real profile service lives elsewhere;
// this in-memory store matches its contract.
package profile

import (
	"context"
	"sync"

	"trivia-session-service/internal/domain"
)

type Store struct {
	mu          sync.RWMutex
	multipliers map[int64]float64
}

func NewStore() *Store {
	return &Store{multipliers: make(map[int64]float64)}
}

// SetTimerMultiplier records an extended-time accessibility setting.
func (s *Store) SetTimerMultiplier(userID int64, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multipliers[userID] = multiplier
}

// TimerMultiplier returns the user's multiplier, defaulting to 1.0.
func (s *Store) TimerMultiplier(_ context.Context, userID int64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.multipliers[userID]; ok && m > 0 {
		return m
	}
	return 1.0
}

// AwardProgression converts a finished round into XP and gems.
func (s *Store) AwardProgression(_ context.Context, userID int64, score, correctCount, totalQuestions int) (domain.ProgressionReward, error) {
	xp := correctCount * 5
	if score > 0 {
		xp += score / 10
	}
	gems := correctCount / 3
	if totalQuestions > 0 && correctCount == totalQuestions {
		gems += 2 // perfect-round bonus
	}
	return domain.ProgressionReward{XPEarned: xp, GemsEarned: gems}, nil
}
