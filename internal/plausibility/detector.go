package plausibility

// PatternThreshold is the number of flags after which the session-wide
// scoring penalty activates for the rest of the round.
const PatternThreshold = 3

// Thresholds maps a difficulty tier to the minimum plausible response time in
// seconds. The effective threshold is the base value scaled by the user's
// accessibility timer multiplier.
type Thresholds map[string]float64

// DefaultThresholds returns the production threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		"easy":   1.5,
		"medium": 2.0,
		"hard":   3.0,
		"expert": 4.0,
	}
}

// For resolves the base threshold for a difficulty. Unrecognized difficulties
// fall back to the strictest tier: the smallest value in the table, so only
// the most extreme speeds flag.
func (t Thresholds) For(difficulty string) float64 {
	if v, ok := t[difficulty]; ok {
		return v
	}
	min := 0.0
	first := true
	for _, v := range t {
		if first || v < min {
			min = v
			first = false
		}
	}
	return min
}

// Detector applies the per-answer plausibility heuristics. Callers skip it
// entirely for the final question and for anonymous users.
type Detector struct {
	thresholds Thresholds
}

func NewDetector(thresholds Thresholds) *Detector {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	return &Detector{thresholds: thresholds}
}

// Evaluate runs both heuristics and returns them independently.
//
// The speed flag fires only for incorrect answers faster than the scaled
// threshold; fast correct answers are skill, not cheating. The clock flag
// fires for any answer whose reported remainder exceeds the question
// duration, which catches a tampered client clock rather than raw speed.
func (d *Detector) Evaluate(difficulty string, correct bool, responseTime, timeRemaining, duration, multiplier float64) (speedFlag, clockFlag bool) {
	if multiplier <= 0 {
		multiplier = 1.0
	}

	if !correct {
		threshold := d.thresholds.For(difficulty) * multiplier
		if responseTime < threshold {
			speedFlag = true
		}
	}

	if timeRemaining > duration {
		clockFlag = true
	}
	return speedFlag, clockFlag
}
