package domain

import "time"

// AnonymousUserID is the sentinel for unauthenticated play. Anonymous
// sessions are never plausibility-flagged and earn no progression.
const AnonymousUserID int64 = 0

// CollectionMeta describes the question collection a session was drawn from.
type CollectionMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Options         []Option `json:"options"`
	Difficulty      string   `json:"difficulty"`
	DurationSeconds float64  `json:"durationSeconds"` // zero means "use the configured default"
}

// CorrectOption returns the ID of the correct option, or "" if none is marked.
func (q Question) CorrectOption() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

// Collection is the raw content-source payload: metadata plus every question
// available for drawing.
type Collection struct {
	Meta      CollectionMeta `json:"meta"`
	Questions []Question     `json:"questions"`
}

// QuestionSet is what a session starts from. Classic mode fills Questions with
// the whole round; adaptive mode serves only the first question and carries
// per-difficulty candidate pools for later draws.
type QuestionSet struct {
	Meta      CollectionMeta
	Questions []Question
	Pools     map[string][]Question
}

// Answer records one graded submission. Flagged is server-internal: it is
// persisted with the session but must never reach clients (the transport
// layer maps answers to wire DTOs without it).
type Answer struct {
	QuestionID     string  `json:"questionId"`
	SelectedOption *string `json:"selectedOption"` // nil means the question timed out
	TimeRemaining  float64 `json:"timeRemaining"`
	ResponseTime   float64 `json:"responseTime"`
	Correct        bool    `json:"correct"`
	BasePoints     int     `json:"basePoints"`
	SpeedBonus     int     `json:"speedBonus"`
	TotalPoints    int     `json:"totalPoints"`
	Flagged        bool    `json:"flagged"`
	Wager          *int    `json:"wager,omitempty"`
}

// AdaptiveState is present only on sessions started in adaptive mode.
type AdaptiveState struct {
	Pools           map[string][]Question `json:"pools"`
	CorrectCount    int                   `json:"correctCount"`
	UsedQuestionIDs []string              `json:"usedQuestionIds"`
}

// Session is the server-authoritative record of one play-through.
type Session struct {
	ID                 string         `json:"id"`
	UserID             int64          `json:"userId"`
	Collection         CollectionMeta `json:"collection"`
	Questions          []Question     `json:"questions"`
	Answers            []Answer       `json:"answers"`
	CreatedAt          time.Time      `json:"createdAt"`
	LastActivityTime   time.Time      `json:"lastActivityTime"`
	ProgressionAwarded bool           `json:"progressionAwarded"`
	PlausibilityFlags  int            `json:"plausibilityFlags"`
	Adaptive           *AdaptiveState `json:"adaptive,omitempty"`
}

// QuestionIndex returns the position of a question in the session, or -1.
func (s *Session) QuestionIndex(questionID string) int {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// AnswerFor returns the stored answer for a question, if any.
func (s *Session) AnswerFor(questionID string) (Answer, bool) {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return s.Answers[i], true
		}
	}
	return Answer{}, false
}

// Score sums the total points of every recorded answer.
func (s *Session) Score() int {
	total := 0
	for i := range s.Answers {
		total += s.Answers[i].TotalPoints
	}
	return total
}

// ProgressionReward is what the profile store grants once per session.
type ProgressionReward struct {
	XPEarned   int `json:"xpEarned"`
	GemsEarned int `json:"gemsEarned"`
}

// FastestAnswer identifies the quickest correct answer of a round.
type FastestAnswer struct {
	QuestionID   string  `json:"questionId"`
	ResponseTime float64 `json:"responseTime"`
}

// WagerResult summarizes the final-question wager outcome.
type WagerResult struct {
	Won          bool `json:"won"`
	PointsChange int  `json:"pointsChange"`
}

// Results aggregates a finished (or abandoned) session.
type Results struct {
	SessionID      string             `json:"sessionId"`
	TotalPoints    int                `json:"totalPoints"`
	CorrectCount   int                `json:"correctCount"`
	TotalQuestions int                `json:"totalQuestions"`
	FastestCorrect *FastestAnswer     `json:"fastestCorrect,omitempty"`
	WagerResult    *WagerResult       `json:"wagerResult,omitempty"`
	Reward         *ProgressionReward `json:"reward,omitempty"`
}
