package scoring

import "testing"

func TestResponseTimeClampsNegative(t *testing.T) {
	if rt := ResponseTime(20, 18); rt != 2 {
		t.Fatalf("expected 2s response time, got %v", rt)
	}
	if rt := ResponseTime(20, 25); rt != 0 {
		t.Fatalf("expected clamped 0, got %v", rt)
	}
}

func TestScoreIncorrectEarnsNothing(t *testing.T) {
	b := DefaultConfig().Score(false, 19, 20, false)
	if b.BasePoints != 0 || b.SpeedBonus != 0 || b.TotalPoints != 0 {
		t.Fatalf("expected zero breakdown, got %+v", b)
	}
}

func TestScoreSpeedBonusDecays(t *testing.T) {
	cfg := DefaultConfig()

	fast := cfg.Score(true, 20, 20, false)
	if fast.TotalPoints != cfg.BasePoints+cfg.MaxSpeedBonus {
		t.Fatalf("instant answer should earn max bonus, got %+v", fast)
	}

	half := cfg.Score(true, 10, 20, false)
	if half.SpeedBonus != cfg.MaxSpeedBonus/2 {
		t.Fatalf("expected half bonus, got %+v", half)
	}

	slow := cfg.Score(true, 0, 20, false)
	if slow.SpeedBonus != 0 || slow.TotalPoints != cfg.BasePoints {
		t.Fatalf("timeout-edge answer should earn base only, got %+v", slow)
	}
}

func TestScorePenaltyDampensBonusOnly(t *testing.T) {
	cfg := DefaultConfig()

	clean := cfg.Score(true, 16, 20, false)
	penalized := cfg.Score(true, 16, 20, true)

	if penalized.BasePoints != clean.BasePoints {
		t.Fatalf("penalty must not touch base points: %+v vs %+v", penalized, clean)
	}
	if penalized.SpeedBonus >= clean.SpeedBonus {
		t.Fatalf("penalty must visibly reduce the bonus: %+v vs %+v", penalized, clean)
	}
	if penalized.TotalPoints <= 0 {
		t.Fatalf("a correct answer can never go negative, got %+v", penalized)
	}
}

func TestScoreClampsReportedRemainder(t *testing.T) {
	cfg := DefaultConfig()
	b := cfg.Score(true, 45, 20, false)
	if b.SpeedBonus != cfg.MaxSpeedBonus {
		t.Fatalf("over-reported remainder should clamp to max bonus, got %+v", b)
	}
}

func TestWagerScore(t *testing.T) {
	w := 100

	won := WagerScore(true, &w)
	if won.TotalPoints != 100 || won.BasePoints != 0 || won.SpeedBonus != 0 {
		t.Fatalf("expected +100 only, got %+v", won)
	}

	lost := WagerScore(false, &w)
	if lost.TotalPoints != -100 {
		t.Fatalf("expected -100, got %+v", lost)
	}

	fun := WagerScore(true, nil)
	if fun.TotalPoints != 0 {
		t.Fatalf("no wager means zero points, got %+v", fun)
	}
}
