package usecase

import (
	"math"
	"testing"
)

func closesOf(vals ...float64) []float64 { return vals }

func approx(got, want float64) bool {
	return math.Abs(got-want) <= 1e-9
}

func TestComputeChangesExactLookback(t *testing.T) {
	// 8 bars cover the 7d window only; the 7d change compares index 7 to 0.
	c := closesOf(100, 90, 80, 70, 60, 50, 40, 93)
	cs := ComputeChanges(c)
	if cs.Chg7d == nil {
		t.Fatalf("expected 7d change")
	}
	if !approx(*cs.Chg7d, -7.0) {
		t.Fatalf("chg7 = %v, want -7", *cs.Chg7d)
	}
	if cs.Chg10d != nil || cs.Chg30d != nil {
		t.Fatalf("longer windows must be nil on 8 bars: %+v", cs)
	}
}

func TestComputeChangesFullPrecision(t *testing.T) {
	// 100/97 does not round cleanly at any decimal; the result must match
	// the raw ratio, not a truncated rendering of it.
	c := closesOf(97, 97, 97, 97, 97, 97, 97, 100)
	cs := ComputeChanges(c)
	if cs.Chg7d == nil {
		t.Fatalf("expected 7d change")
	}
	want := (100.0/97.0 - 1) * 100
	if !approx(*cs.Chg7d, want) {
		t.Fatalf("chg7 = %v, want %v", *cs.Chg7d, want)
	}
}

func TestComputeChangesAllWindows(t *testing.T) {
	c := make([]float64, 31)
	for i := range c {
		c[i] = 100
	}
	c[0] = 200  // 30 bars back
	c[20] = 160 // 10 bars back
	c[23] = 125 // 7 bars back
	c[30] = 110 // last

	cs := ComputeChanges(c)
	if cs.Chg7d == nil || !approx(*cs.Chg7d, -12.0) {
		t.Fatalf("chg7 = %v, want -12", cs.Chg7d)
	}
	if cs.Chg10d == nil || !approx(*cs.Chg10d, -31.25) {
		t.Fatalf("chg10 = %v, want -31.25", cs.Chg10d)
	}
	if cs.Chg30d == nil || !approx(*cs.Chg30d, -45.0) {
		t.Fatalf("chg30 = %v, want -45", cs.Chg30d)
	}
}

func TestComputeChangesShortSeries(t *testing.T) {
	cs := ComputeChanges(closesOf(1, 2, 3))
	if cs.Chg7d != nil || cs.Chg10d != nil || cs.Chg30d != nil {
		t.Fatalf("expected all-nil on 3 bars: %+v", cs)
	}
}

func TestComputeChangesZeroReference(t *testing.T) {
	c := closesOf(0, 1, 1, 1, 1, 1, 1, 1)
	cs := ComputeChanges(c)
	if cs.Chg7d != nil {
		t.Fatalf("zero reference close must yield nil, got %v", *cs.Chg7d)
	}
}

func TestEffectiveChangePrefersShortestWindow(t *testing.T) {
	seven, thirty := -5.0, -40.0
	cs := ComputeChanges(nil)
	cs.Chg7d, cs.Chg30d = &seven, &thirty
	if eff := cs.Effective(); eff == nil || *eff != -5.0 {
		t.Fatalf("effective = %v, want the 7d value", eff)
	}
	cs.Chg7d = nil
	if eff := cs.Effective(); eff == nil || *eff != -40.0 {
		t.Fatalf("effective = %v, want the 30d fallback", eff)
	}
}
