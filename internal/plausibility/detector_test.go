package plausibility

import "testing"

func TestCorrectAnswersNeverSpeedFlag(t *testing.T) {
	d := NewDetector(nil)

	// 2s response against a 3s hard threshold would flag an incorrect answer.
	speed, clock := d.Evaluate("hard", true, 2, 18, 20, 1.0)
	if speed {
		t.Fatalf("correct answer must never speed-flag")
	}
	if clock {
		t.Fatalf("remainder within duration must not clock-flag")
	}
}

func TestIncorrectFastAnswerFlags(t *testing.T) {
	d := NewDetector(Thresholds{"medium": 2.0})

	speed, _ := d.Evaluate("medium", false, 0.5, 19.5, 20, 1.0)
	if !speed {
		t.Fatalf("0.5s against a 2s threshold must flag")
	}

	speed, _ = d.Evaluate("medium", false, 2.5, 17.5, 20, 1.0)
	if speed {
		t.Fatalf("2.5s against a 2s threshold must not flag")
	}
}

func TestTimerMultiplierScalesThreshold(t *testing.T) {
	d := NewDetector(Thresholds{"easy": 2.0})

	// 3s is plausible at 1.0x but not at 2.0x extended time.
	if speed, _ := d.Evaluate("easy", false, 3, 17, 20, 1.0); speed {
		t.Fatalf("3s should pass the unscaled 2s threshold")
	}
	if speed, _ := d.Evaluate("easy", false, 3, 17, 20, 2.0); !speed {
		t.Fatalf("3s should flag against the scaled 4s threshold")
	}

	// Zero multiplier means "unset" and defaults to 1.0.
	if speed, _ := d.Evaluate("easy", false, 1, 19, 20, 0); !speed {
		t.Fatalf("default multiplier should apply the base threshold")
	}
}

func TestUnknownDifficultyUsesStrictestTier(t *testing.T) {
	table := Thresholds{"easy": 1.5, "hard": 3.0}
	if got := table.For("nightmare"); got != 1.5 {
		t.Fatalf("expected fallback to 1.5, got %v", got)
	}
}

func TestClockManipulationFlagsRegardlessOfCorrectness(t *testing.T) {
	d := NewDetector(nil)

	if _, clock := d.Evaluate("easy", true, 0, 25, 20, 1.0); !clock {
		t.Fatalf("remainder above duration must clock-flag even when correct")
	}
	if _, clock := d.Evaluate("easy", false, 0, 25, 20, 1.0); !clock {
		t.Fatalf("remainder above duration must clock-flag when incorrect")
	}
}
