// Package phase mirrors the server-side game flow as a pure reducer so the
// presentation layer can track which calls have already been made. Reduce is
// total: invalid actions leave the state unchanged.
package phase

// Phase is the client-visible stage of a round.
type Phase string

const (
	Idle              Phase = "idle"
	Answering         Phase = "answering"
	Selected          Phase = "selected" // final question only: picked but not locked in
	Locked            Phase = "locked"
	Revealing         Phase = "revealing"
	FinalAnnouncement Phase = "final-announcement"
	Wagering          Phase = "wagering"
	WagerLocked       Phase = "wager-locked"
	Complete          Phase = "complete"
)

// ActionType enumerates the reducer's inputs.
type ActionType string

const (
	Start        ActionType = "START"
	SelectAnswer ActionType = "SELECT_ANSWER"
	LockAnswer   ActionType = "LOCK_ANSWER"
	Reveal       ActionType = "REVEAL"
	NextQuestion ActionType = "NEXT_QUESTION"
	StartWager   ActionType = "START_WAGER"
	SetWager     ActionType = "SET_WAGER"
	LockWager    ActionType = "LOCK_WAGER"
)

// Action carries an action type plus its payload fields; unused fields are
// ignored by the reducer.
type Action struct {
	Type   ActionType
	Option string // SELECT_ANSWER
	Points int    // REVEAL: points the server awarded
	Amount int    // SET_WAGER
}

// State is the client's snapshot of the round.
type State struct {
	Phase    Phase
	Index    int // current question, 0-based
	Total    int // round length
	Score    int
	Selected string
	Wager    int
}

// New returns the idle state for a round of the given length.
func New(total int) State {
	return State{Phase: Idle, Total: total}
}

func (s State) onFinal() bool {
	return s.Index == s.Total-1
}

// Reduce applies one action and returns the next state. Unknown or ill-timed
// actions are no-ops by design: a stray tap must never desynchronize the UI
// from calls the server has already processed.
func Reduce(s State, a Action) State {
	switch a.Type {
	case Start:
		if s.Phase != Idle {
			return s
		}
		s.Phase = Answering
		s.Index = 0

	case SelectAnswer:
		switch {
		case s.Phase == Answering && s.onFinal():
			// The final question requires deliberate confirmation; allow
			// re-selection until the answer is locked.
			s.Phase = Selected
			s.Selected = a.Option
		case s.Phase == Selected && s.onFinal():
			s.Selected = a.Option
		case s.Phase == Answering:
			// Everything else submits on selection.
			s.Phase = Locked
			s.Selected = a.Option
		}

	case LockAnswer:
		if s.Phase == Selected {
			s.Phase = Locked
		}

	case Reveal:
		if s.Phase == Locked {
			s.Phase = Revealing
			s.Score += a.Points
		}

	case NextQuestion:
		if s.Phase == WagerLocked {
			// The wager is in; the final question begins without advancing.
			s.Phase = Answering
			return s
		}
		if s.Phase != Revealing {
			return s
		}
		if s.Index+1 >= s.Total {
			s.Phase = Complete
			return s
		}
		s.Index++
		s.Selected = ""
		if s.onFinal() {
			s.Phase = FinalAnnouncement
		} else {
			s.Phase = Answering
		}

	case StartWager:
		if s.Phase == FinalAnnouncement {
			s.Phase = Wagering
			s.Wager = 0
		}

	case SetWager:
		if s.Phase == Wagering {
			s.Wager = clampWager(a.Amount, s.Score)
		}

	case LockWager:
		if s.Phase == Wagering {
			s.Phase = WagerLocked
		}
	}
	return s
}

func clampWager(amount, score int) int {
	if amount < 0 {
		return 0
	}
	if max := score / 2; amount > max {
		return max
	}
	return amount
}
