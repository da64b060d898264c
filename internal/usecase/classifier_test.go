package usecase

import (
	"testing"

	"SignalPull/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func hasLevel(levels []models.LevelTag, want models.LevelTag) bool {
	for _, l := range levels {
		if l == want {
			return true
		}
	}
	return false
}

func baseInput() ClassifyInput {
	return ClassifyInput{
		Asset:       models.AssetEquity,
		GuardStatus: models.GuardOK,
		Window:      models.WindowTarget,
	}
}

func TestClassifyDeepDrawdownWithRSI(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-25)
	in.Indicators.RSI14 = fp(45)
	in.Indicators.Close = fp(80)

	got := Classify(in)
	if !hasLevel(got, models.LevelN1) || !hasLevel(got, models.LevelN2) {
		t.Fatalf("expected {N1,N2}, got %v", got)
	}
	// RSI 45 also satisfies the N3 band.
	if !hasLevel(got, models.LevelN3) {
		t.Fatalf("expected N3 as well, got %v", got)
	}
}

func TestClassifyLiteOnShortWindow(t *testing.T) {
	in := baseInput()
	in.Window = models.WindowShort
	in.Changes.Chg10d = fp(-15)

	got := Classify(in)
	if len(got) != 1 || got[0] != models.LevelLiteN2 {
		t.Fatalf("expected exactly N_LITE_N2, got %v", got)
	}
}

func TestClassifyLiteOnAllNullIndicators(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-23)

	got := Classify(in)
	if len(got) != 1 || got[0] != models.LevelLiteN1 {
		t.Fatalf("expected exactly N_LITE_N1, got %v", got)
	}
}

func TestClassifyLiteNearThresholdDrawdown(t *testing.T) {
	// 92004/100000 is a 7.996% drop. The N3 threshold is -8; a drawdown that
	// merely rounds to -8.00 must stay below every tier.
	cs := ComputeChanges(closesOf(100000, 99000, 98000, 97000, 96000, 95000, 93000, 92004))

	in := baseInput()
	in.Window = models.WindowShort
	in.Changes = cs

	if got := Classify(in); got != nil {
		t.Fatalf("-7.996%% must not reach a lite tier, got %v", got)
	}
}

func TestClassifyNearMissRSI(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-3)
	in.Indicators.RSI14 = fp(30)
	in.Indicators.Close = fp(100)
	in.Indicators.BBLower = fp(80)

	got := Classify(in)
	if len(got) != 1 || got[0] != models.LevelRSILow {
		t.Fatalf("expected {Nx_RSI_LOW}, got %v", got)
	}
}

func TestClassifyNearMissWithoutChangeData(t *testing.T) {
	// The near-miss tags read indicators only; a series with no computable
	// change still surfaces them.
	in := baseInput()
	in.Indicators.RSI14 = fp(30)
	in.Indicators.Close = fp(100)
	in.Indicators.BBLower = fp(80)

	got := Classify(in)
	if len(got) != 1 || got[0] != models.LevelRSILow {
		t.Fatalf("expected {Nx_RSI_LOW} without change data, got %v", got)
	}
}

func TestClassifyNearMissSuppressedByLevel(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-25)
	in.Indicators.RSI14 = fp(30)

	got := Classify(in)
	if hasLevel(got, models.LevelRSILow) {
		t.Fatalf("near-miss must not fire alongside a level: %v", got)
	}
	if !hasLevel(got, models.LevelN1) {
		t.Fatalf("expected N1, got %v", got)
	}
}

func TestClassifyBothNearMisses(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-2)
	in.Indicators.RSI14 = fp(30)
	in.Indicators.Close = fp(100)
	in.Indicators.BBLower = fp(99.5)

	got := Classify(in)
	if !hasLevel(got, models.LevelRSILow) || !hasLevel(got, models.LevelNearBBLo) {
		t.Fatalf("expected both near-miss tags, got %v", got)
	}
}

func TestClassifyN2DeviationClause(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-13)
	in.Indicators.RSI14 = fp(60) // outside the band
	in.Indicators.Close = fp(85)
	in.Indicators.BBMA20 = fp(100)
	in.Indicators.ATR14 = fp(10) // |85-100| = 15 >= 1.5*10

	got := Classify(in)
	if !hasLevel(got, models.LevelN2) {
		t.Fatalf("expected N2 via deviation clause, got %v", got)
	}
}

func TestClassifyN2NeedsFullGuard(t *testing.T) {
	in := baseInput()
	in.GuardStatus = models.GuardPart
	in.Changes.Chg7d = fp(-25)
	in.Indicators.RSI14 = fp(45)

	got := Classify(in)
	if !hasLevel(got, models.LevelN1) {
		t.Fatalf("N1 tolerates PART, got %v", got)
	}
	if hasLevel(got, models.LevelN2) || hasLevel(got, models.LevelN3) {
		t.Fatalf("N2/N3 require OK, got %v", got)
	}
}

func TestClassifyN3CGate(t *testing.T) {
	in := baseInput()
	in.Asset = models.AssetCrypto
	in.Changes.Chg7d = fp(-9)
	in.Indicators.RSI14 = fp(70) // keeps N3 quiet
	in.Derivatives.Funding = fp(-0.0003)
	in.Derivatives.OIChg3dPct = fp(-10)

	got := Classify(in)
	if !hasLevel(got, models.LevelN3C) {
		t.Fatalf("expected N3C, got %v", got)
	}

	// Any missing derivative disqualifies.
	in.Derivatives.OIChg3dPct = nil
	got = Classify(in)
	if hasLevel(got, models.LevelN3C) {
		t.Fatalf("N3C must not fire without oi change, got %v", got)
	}
}

func TestClassifyN3CEquityNeverFires(t *testing.T) {
	in := baseInput()
	in.Changes.Chg7d = fp(-9)
	in.Derivatives.Funding = fp(-0.0003)
	in.Derivatives.OIChg3dPct = fp(-10)

	if got := Classify(in); hasLevel(got, models.LevelN3C) {
		t.Fatalf("N3C is crypto only, got %v", got)
	}
}

func TestClassifyMonotonicity(t *testing.T) {
	mk := func(chg float64) ClassifyInput {
		in := baseInput()
		in.Changes.Chg7d = fp(chg)
		in.Indicators.RSI14 = fp(45)
		in.Indicators.Close = fp(80)
		return in
	}
	prev := map[models.LevelTag]bool{}
	for _, chg := range []float64{-8, -12, -22, -40} {
		got := Classify(mk(chg))
		for l := range prev {
			if !hasLevel(got, l) {
				t.Fatalf("level %s lost at chg=%v: %v", l, chg, got)
			}
		}
		for _, l := range got {
			prev[l] = true
		}
	}
}

func TestClassifyNullSafety(t *testing.T) {
	in := baseInput()
	if got := Classify(in); got != nil {
		t.Fatalf("no change data must yield nothing, got %v", got)
	}

	in.GuardStatus = models.GuardFail
	in.Changes.Chg7d = fp(-30)
	if got := Classify(in); got != nil {
		t.Fatalf("rejected close must yield nothing, got %v", got)
	}
}
