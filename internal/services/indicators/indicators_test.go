package indicators

import (
	"math"
	"testing"
)

func seq(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	got := Compute(nil)
	if got.Close != nil || got.RSI14 != nil || got.BBMA20 != nil {
		t.Fatalf("expected all-nil set, got %+v", got)
	}
}

func TestComputeShortSeries(t *testing.T) {
	// 14 points carry only 13 deltas; RSI and ATR need a full 14.
	got := Compute(seq(100, 1, 14))
	if got.RSI14 != nil || got.ATR14 != nil {
		t.Fatalf("expected nil rsi/atr below 15 points, got %+v", got)
	}
	if got.Close == nil || *got.Close != 113 {
		t.Fatalf("close must still be reported: %+v", got.Close)
	}
}

func TestRSIUndefinedOnMonotonicRise(t *testing.T) {
	// Every delta is positive, the smoothed down-average is exactly zero and
	// the ratio is undefined; we report null instead of pinning at 100.
	got := Compute(seq(100, 1, 30))
	if got.RSI14 != nil {
		t.Fatalf("expected nil RSI, got %v", *got.RSI14)
	}
	if got.ATR14 == nil || *got.ATR14 != 1 {
		t.Fatalf("constant unit moves must give ATR 1, got %+v", got.ATR14)
	}
}

func TestRSIBoundsAndDirection(t *testing.T) {
	// Mostly down with one bounce, versus mostly up with one dip.
	down := append(seq(200, -2, 25), 164, 160, 158, 156, 154)
	up := append(seq(100, 2, 25), 146, 150, 152, 154, 156)

	d := Compute(down)
	u := Compute(up)
	if d.RSI14 == nil || u.RSI14 == nil {
		t.Fatalf("expected defined RSI for mixed series")
	}
	if *d.RSI14 <= 0 || *d.RSI14 >= 100 || *u.RSI14 <= 0 || *u.RSI14 >= 100 {
		t.Fatalf("RSI out of (0,100): down=%v up=%v", *d.RSI14, *u.RSI14)
	}
	if *d.RSI14 >= 50 {
		t.Fatalf("downtrend RSI should sit below 50, got %v", *d.RSI14)
	}
	if *u.RSI14 <= 50 {
		t.Fatalf("uptrend RSI should sit above 50, got %v", *u.RSI14)
	}
}

func TestBollingerOnConstantSeries(t *testing.T) {
	got := Compute(constant(42, 25))
	if got.BBMA20 == nil || *got.BBMA20 != 42 {
		t.Fatalf("expected ma 42, got %+v", got.BBMA20)
	}
	if *got.BBLower != 42 || *got.BBUpper != 42 {
		t.Fatalf("zero variance must collapse the bands: [%v, %v]", *got.BBLower, *got.BBUpper)
	}
}

func TestBollingerWindowAndSymmetry(t *testing.T) {
	// 30 points but the bands only see the trailing 20 (11..30).
	got := Compute(seq(1, 1, 30))
	if got.BBMA20 == nil || *got.BBMA20 != 20.5 {
		t.Fatalf("expected trailing-window mean 20.5, got %+v", got.BBMA20)
	}
	mid := (*got.BBLower + *got.BBUpper) / 2
	if math.Abs(mid-20.5) > 1e-9 {
		t.Fatalf("bands not centered on the mean: %v", mid)
	}
	if *got.BBLower >= *got.BBUpper {
		t.Fatalf("bands inverted: [%v, %v]", *got.BBLower, *got.BBUpper)
	}
}

func TestATRPercentRounding(t *testing.T) {
	// Unit moves into a final close of 129: atr_pct = 100/129 = 0.7752 -> 0.78.
	got := Compute(seq(100, 1, 30))
	if got.ATR14Pct == nil || *got.ATR14Pct != 0.78 {
		t.Fatalf("expected atr pct 0.78, got %+v", got.ATR14Pct)
	}
	if *got.Close != 129 {
		t.Fatalf("expected close 129, got %v", *got.Close)
	}
}

func TestMeanStdPopulation(t *testing.T) {
	// Population variance of 1..20 is (20*20-1)/12 = 33.25.
	mean, std := meanStd(seq(1, 1, 20))
	if mean != 10.5 {
		t.Fatalf("mean = %v", mean)
	}
	if math.Abs(std-math.Sqrt(33.25)) > 1e-12 {
		t.Fatalf("std = %v, want sqrt(33.25)", std)
	}
}
