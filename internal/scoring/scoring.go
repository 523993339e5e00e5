package scoring

// Config holds the tunable scoring constants (defaults match production).
type Config struct {
	BasePoints    int     // awarded for any correct non-wager answer
	MaxSpeedBonus int     // bonus for an instant correct answer, decays linearly to 0 at timeout
	PenaltyFactor float64 // multiplier applied to the speed bonus while the session penalty is active
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BasePoints:    100,
		MaxSpeedBonus: 50,
		PenaltyFactor: 0.5,
	}
}

// Breakdown is the point split for a single answer.
type Breakdown struct {
	BasePoints  int
	SpeedBonus  int
	TotalPoints int
}

// ResponseTime derives the server-side elapsed time from the question duration
// and the client-reported remainder, clamped to be non-negative.
func ResponseTime(duration, timeRemaining float64) float64 {
	rt := duration - timeRemaining
	if rt < 0 {
		return 0
	}
	return rt
}

// Score computes the point breakdown for a normal (non-wager) answer.
// Incorrect or timed-out answers earn nothing. The penalty dampens the speed
// bonus only, so a correct answer can never go negative.
func (c Config) Score(correct bool, timeRemaining, duration float64, penaltyActive bool) Breakdown {
	if !correct {
		return Breakdown{}
	}

	bonus := 0
	if duration > 0 {
		ratio := timeRemaining / duration
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		bonus = int(float64(c.MaxSpeedBonus) * ratio)
	}
	if penaltyActive {
		bonus = int(float64(bonus) * c.PenaltyFactor)
	}

	return Breakdown{
		BasePoints:  c.BasePoints,
		SpeedBonus:  bonus,
		TotalPoints: c.BasePoints + bonus,
	}
}

// WagerScore is the final-question path: no base points, no speed bonus, just
// the wager won or lost. A nil wager means the player opted to play for fun.
func WagerScore(correct bool, wager *int) Breakdown {
	if wager == nil {
		return Breakdown{}
	}
	if correct {
		return Breakdown{TotalPoints: *wager}
	}
	return Breakdown{TotalPoints: -*wager}
}
