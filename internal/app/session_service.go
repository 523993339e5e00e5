package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia-session-service/internal/adaptive"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/plausibility"
	"trivia-session-service/internal/scoring"
)

// SessionStore abstracts how session records are persisted (redis, memory,
// or a failover chain). The service never depends on backend internals.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Find(ctx context.Context, sessionID string) (*domain.Session, bool, error)
	// Degraded reports whether records live on the non-durable fallback;
	// surfaced to callers so clients can warn that progress may not survive
	// a restart.
	Degraded() bool
}

// ContentSource provides question sets for new sessions.
type ContentSource interface {
	GetQuestionSet(ctx context.Context, collectionID string, adaptiveMode bool, exclude []string) (domain.QuestionSet, error)
}

// Profiles is the user-profile collaborator: accessibility timer multiplier
// plus the one-shot progression award.
type Profiles interface {
	TimerMultiplier(ctx context.Context, userID int64) float64
	AwardProgression(ctx context.Context, userID int64, score, correctCount, totalQuestions int) (domain.ProgressionReward, error)
}

// Telemetry receives per-answer outcomes; implementations are fire-and-forget.
type Telemetry interface {
	AnswerGraded(ctx context.Context, questionID string, wasCorrect bool)
}

// History is the ephemeral recent-question exclusion list.
type History interface {
	Recent(userID int64) []string
	Remember(userID int64, questionIDs ...string)
}

// Config carries the session engine tunables.
type Config struct {
	SessionTTL       time.Duration
	RoundLength      int
	QuestionDuration float64 // seconds, used when a question carries none
	Scoring          scoring.Config
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:       30 * time.Minute,
		RoundLength:      10,
		QuestionDuration: 20,
		Scoring:          scoring.DefaultConfig(),
	}
}

// SessionService orchestrates the session lifecycle: creation, sliding
// expiry, answer grading, anti-cheat flags, wagers, adaptive draws, and
// result aggregation.
type SessionService struct {
	store     SessionStore
	content   ContentSource
	profiles  Profiles
	telemetry Telemetry
	history   History
	selector  *adaptive.Selector
	detector  *plausibility.Detector
	cfg       Config

	// Serializes read-modify-write per session id; a duplicate submit racing
	// the original must observe its write, not clobber it.
	locks sync.Map
}

func NewSessionService(
	store SessionStore,
	content ContentSource,
	profiles Profiles,
	telemetry Telemetry,
	history History,
	selector *adaptive.Selector,
	detector *plausibility.Detector,
	cfg Config,
) *SessionService {
	if cfg.RoundLength <= 0 {
		cfg.RoundLength = 10
	}
	if cfg.QuestionDuration <= 0 {
		cfg.QuestionDuration = 20
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &SessionService{
		store:     store,
		content:   content,
		profiles:  profiles,
		telemetry: telemetry,
		history:   history,
		selector:  selector,
		detector:  detector,
		cfg:       cfg,
	}
}

func (s *SessionService) lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// StartSession draws a question set and persists a fresh session. The second
// return value reports degraded (non-durable) storage.
func (s *SessionService) StartSession(ctx context.Context, userID int64, collectionID string, adaptiveMode bool) (*domain.Session, bool, error) {
	set, err := s.content.GetQuestionSet(ctx, collectionID, adaptiveMode, s.history.Recent(userID))
	if err != nil {
		return nil, false, fmt.Errorf("load question set: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, false, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               id.String(),
		UserID:           userID,
		Collection:       set.Meta,
		Questions:        set.Questions,
		Answers:          []domain.Answer{},
		CreatedAt:        now,
		LastActivityTime: now,
	}
	if adaptiveMode {
		state := &domain.AdaptiveState{Pools: set.Pools}
		for _, q := range set.Questions {
			state.UsedQuestionIDs = append(state.UsedQuestionIDs, q.ID)
		}
		session.Adaptive = state
	} else if len(session.Questions) > s.cfg.RoundLength {
		session.Questions = session.Questions[:s.cfg.RoundLength]
	}

	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, false, fmt.Errorf("persist session: %w", err)
	}

	served := make([]string, 0, len(session.Questions))
	for _, q := range session.Questions {
		served = append(served, q.ID)
	}
	s.history.Remember(userID, served...)

	return session, s.store.Degraded(), nil
}

// GetSession fetches a session and refreshes its sliding expiry. This is the
// only way reads extend a session's life.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domain.Session, bool, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, ok, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, domain.ErrSessionNotFound
	}

	session.LastActivityTime = time.Now()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, false, fmt.Errorf("refresh session: %w", err)
	}
	return session, s.store.Degraded(), nil
}

// SubmitAnswer grades one submission. Re-submitting an answered question
// returns the stored answer unchanged. The returned question is non-nil only
// when an adaptive draw appended the next question to the round.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID string, selectedOption *string, timeRemaining float64, wager *int) (domain.Answer, *domain.Question, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, ok, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return domain.Answer{}, nil, err
	}
	if !ok {
		return domain.Answer{}, nil, domain.ErrSessionNotFound
	}

	idx := session.QuestionIndex(questionID)
	if idx < 0 {
		return domain.Answer{}, nil, domain.ErrQuestionNotInSession
	}
	if prior, answered := session.AnswerFor(questionID); answered {
		return prior, nil, nil
	}

	final := idx == s.cfg.RoundLength-1
	if wager != nil {
		switch {
		case !final:
			return domain.Answer{}, nil, domain.ErrWagerNotAllowed
		case *wager < 0:
			return domain.Answer{}, nil, domain.ErrInvalidWager
		case *wager > session.Score()/2:
			return domain.Answer{}, nil, domain.ErrWagerTooLarge
		}
	}

	question := session.Questions[idx]
	duration := question.DurationSeconds
	if duration <= 0 {
		duration = s.cfg.QuestionDuration
	}
	responseTime := scoring.ResponseTime(duration, timeRemaining)
	correct := selectedOption != nil && *selectedOption == question.CorrectOption()

	// Penalty state is read before this answer's flags land: the answer that
	// trips the threshold is graded clean, every later one is damped.
	penaltyActive := session.PlausibilityFlags >= plausibility.PatternThreshold

	flagged := false
	if !final && session.UserID != domain.AnonymousUserID {
		multiplier := s.profiles.TimerMultiplier(ctx, session.UserID)
		speedFlag, clockFlag := s.detector.Evaluate(question.Difficulty, correct, responseTime, timeRemaining, duration, multiplier)
		if speedFlag {
			session.PlausibilityFlags++
		}
		if clockFlag {
			session.PlausibilityFlags++
		}
		flagged = speedFlag || (clockFlag && !correct)
	}

	var breakdown scoring.Breakdown
	if final {
		breakdown = scoring.WagerScore(correct, wager)
	} else {
		breakdown = s.cfg.Scoring.Score(correct, timeRemaining, duration, penaltyActive)
	}

	answer := domain.Answer{
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		TimeRemaining:  timeRemaining,
		ResponseTime:   responseTime,
		Correct:        correct,
		BasePoints:     breakdown.BasePoints,
		SpeedBonus:     breakdown.SpeedBonus,
		TotalPoints:    breakdown.TotalPoints,
		Flagged:        flagged,
		Wager:          wager,
	}
	session.Answers = append(session.Answers, answer)

	var next *domain.Question
	if session.Adaptive != nil {
		if correct {
			session.Adaptive.CorrectCount++
		}
		next = s.appendNextQuestion(session)
	}

	session.LastActivityTime = time.Now()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return domain.Answer{}, nil, fmt.Errorf("persist answer: %w", err)
	}

	s.telemetry.AnswerGraded(ctx, questionID, correct)

	return answer, next, nil
}

// appendNextQuestion draws the next adaptive question so the subsequent fetch
// already sees it. Pool exhaustion shortens the round instead of failing.
func (s *SessionService) appendNextQuestion(session *domain.Session) *domain.Question {
	if len(session.Questions) >= s.cfg.RoundLength {
		return nil
	}

	position := len(session.Questions) + 1
	q, err := s.selector.Next(session.Adaptive, position, s.cfg.RoundLength, s.history.Recent(session.UserID))
	if err != nil {
		if errors.Is(err, domain.ErrPoolExhausted) {
			log.Printf("session %s: pool exhausted at position %d, round shortened", session.ID, position)
		} else {
			log.Printf("session %s: adaptive draw failed: %v", session.ID, err)
		}
		return nil
	}

	session.Questions = append(session.Questions, q)
	session.Adaptive.UsedQuestionIDs = append(session.Adaptive.UsedQuestionIDs, q.ID)
	s.history.Remember(session.UserID, q.ID)
	return &q
}

// Results aggregates the session and, once per session, grants the
// progression award. Award and persistence failures never fail the call.
func (s *SessionService) Results(ctx context.Context, sessionID string) (domain.Results, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, ok, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return domain.Results{}, err
	}
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFound
	}

	results := domain.Results{
		SessionID:      session.ID,
		TotalQuestions: len(session.Questions),
	}
	for i := range session.Answers {
		a := &session.Answers[i]
		results.TotalPoints += a.TotalPoints
		if !a.Correct {
			continue
		}
		results.CorrectCount++
		if results.FastestCorrect == nil || a.ResponseTime < results.FastestCorrect.ResponseTime {
			results.FastestCorrect = &domain.FastestAnswer{
				QuestionID:   a.QuestionID,
				ResponseTime: a.ResponseTime,
			}
		}
	}

	if len(session.Answers) >= s.cfg.RoundLength {
		if last := session.Answers[s.cfg.RoundLength-1]; last.Wager != nil {
			results.WagerResult = &domain.WagerResult{
				Won:          last.TotalPoints > 0,
				PointsChange: last.TotalPoints,
			}
		}
	}

	if !session.ProgressionAwarded && session.UserID != domain.AnonymousUserID {
		reward, err := s.profiles.AwardProgression(ctx, session.UserID, results.TotalPoints, results.CorrectCount, results.TotalQuestions)
		if err != nil {
			log.Printf("session %s: progression award failed: %v", session.ID, err)
		} else {
			session.ProgressionAwarded = true
			results.Reward = &reward
		}
	}

	session.LastActivityTime = time.Now()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		log.Printf("session %s: persist after results: %v", session.ID, err)
	}

	return results, nil
}
