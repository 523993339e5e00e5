package domain

import "errors"

var (
	// ErrSessionNotFound covers both unknown and expired sessions; callers
	// cannot tell the two apart and should not try.
	ErrSessionNotFound = errors.New("invalid or expired session")
	// ErrCollectionNotFound indicates the question collection could not be loaded.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrQuestionNotInSession indicates a submitted question ID is not part of the round.
	ErrQuestionNotInSession = errors.New("question not in session")
	// ErrWagerNotAllowed is returned for wagers on anything but the final question.
	ErrWagerNotAllowed = errors.New("wager only allowed on the final question")
	// ErrInvalidWager is returned for negative wagers.
	ErrInvalidWager = errors.New("wager must not be negative")
	// ErrWagerTooLarge is returned when a wager exceeds half the accumulated score.
	ErrWagerTooLarge = errors.New("wager exceeds half of the accumulated score")
	// ErrPoolExhausted signals that no unused candidate question remains. It is
	// logged by the session manager, never surfaced to players.
	ErrPoolExhausted = errors.New("adaptive question pool exhausted")
)
