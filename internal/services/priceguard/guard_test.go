package priceguard

import (
	"fmt"
	"testing"

	"SignalPull/internal/domain/models"
)

// daily builds a list-of-points RawSeries with one bar per day ending at the
// given closes, last bar on 2024-10-20.
func daily(vendor string, closes ...float64) models.RawSeries {
	pts := make([]models.RawPoint, len(closes))
	day := 20 - len(closes) + 1
	for i, c := range closes {
		pts[i] = models.RawPoint{T: fmt.Sprintf("2024-10-%02d", day+i), C: c}
	}
	return models.RawSeries{Vendor: vendor, Points: pts}
}

func flatSeries(vendor string, n int, last float64) models.RawSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = last
	}
	return daily(vendor, closes...)
}

func TestAcceptBothWithinThreshold(t *testing.T) {
	g := New()
	stq := flatSeries("stooq", 10, 100.00)
	yh := flatSeries("yahoo", 10, 100.50)

	got := g.Accept(models.AssetEquity, stq, yh)
	if got.Status != models.GuardOK {
		t.Fatalf("expected OK, got %s (%s)", got.Status, got.Reason)
	}
	if got.Provenance != "stooq|yahoo" {
		t.Fatalf("unexpected provenance %q", got.Provenance)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("expected two sources, got %v", got.Sources)
	}
}

func TestRejectDivergence(t *testing.T) {
	g := New()
	stq := flatSeries("stooq", 10, 100.00)
	yh := flatSeries("yahoo", 10, 102.00)

	got := g.Accept(models.AssetEquity, stq, yh)
	if got.Status != models.GuardFail || got.Reason != models.ReasonDivergence {
		t.Fatalf("expected divergencia, got %s (%s)", got.Status, got.Reason)
	}
	if got.Accepted() {
		t.Fatalf("rejected close must not be accepted")
	}
}

func TestGuardSymmetry(t *testing.T) {
	g := New()
	a := flatSeries("stooq", 10, 100.00)
	b := flatSeries("yahoo", 10, 100.79)

	fwd := g.Accept(models.AssetEquity, a, b)
	rev := g.Accept(models.AssetEquity, b, a)
	if (fwd.Status == models.GuardFail) != (rev.Status == models.GuardFail) {
		t.Fatalf("pass/fail changed on swap: %s vs %s", fwd.Status, rev.Status)
	}
}

func TestRejectMisaligned(t *testing.T) {
	g := New()
	a := daily("stooq", 100, 100, 100, 100, 100, 100, 100, 100)
	b := models.RawSeries{Vendor: "yahoo", Points: []models.RawPoint{
		{T: "2023-01-01", C: 90.0},
		{T: "2023-01-02", C: 91.0},
	}}
	got := g.Accept(models.AssetEquity, a, b)
	if got.Status != models.GuardFail || got.Reason != models.ReasonMisaligned {
		t.Fatalf("expected datas_desalinhadas, got %s (%s)", got.Status, got.Reason)
	}
}

func TestSingleSourceWithinSanity(t *testing.T) {
	g := New()
	// +18% over the last 7 bars, 10 bars total: fine for crypto (40% bound).
	bn := daily("binance", 100, 100, 100, 100, 100, 105, 110, 112, 115, 118)
	got := g.Accept(models.AssetCrypto, bn, models.RawSeries{})
	if got.Status != models.GuardPart {
		t.Fatalf("expected PART, got %s (%s)", got.Status, got.Reason)
	}
	if got.Provenance != "binance_only" {
		t.Fatalf("unexpected provenance %q", got.Provenance)
	}
}

func TestSingleSourceBeyondSanity(t *testing.T) {
	g := New()
	// +30% over the last 7 bars exceeds the 25% equity bound.
	stq := daily("stooq", 100, 100, 100, 100, 105, 115, 125, 128, 129, 130)
	got := g.Accept(models.AssetEquity, stq, models.RawSeries{})
	if got.Status != models.GuardFail || got.Reason != models.ReasonSanityBound {
		t.Fatalf("expected sanity reject, got %s (%s)", got.Status, got.Reason)
	}
}

func TestSingleSourceTooShort(t *testing.T) {
	g := New()
	stq := daily("stooq", 100, 101, 102)
	got := g.Accept(models.AssetEquity, stq, models.RawSeries{})
	if got.Status != models.GuardFail || got.Reason != models.ReasonShortHistory {
		t.Fatalf("expected historico_insuficiente, got %s (%s)", got.Status, got.Reason)
	}
}

func TestBothEmpty(t *testing.T) {
	g := New()
	got := g.Accept(models.AssetEquity, models.RawSeries{}, models.RawSeries{})
	if got.Status != models.GuardFail || got.Reason != models.ReasonNoData {
		t.Fatalf("expected sem_dados, got %s (%s)", got.Status, got.Reason)
	}
}

func TestPrefersFresherSeries(t *testing.T) {
	g := New()
	// a ends a day earlier than b; on the shared latest date both read 100.
	a := models.RawSeries{Vendor: "stooq", Points: []models.RawPoint{
		{T: "2024-10-12", C: 100.0}, {T: "2024-10-13", C: 100.0},
		{T: "2024-10-14", C: 100.0}, {T: "2024-10-15", C: 100.0},
		{T: "2024-10-16", C: 100.0}, {T: "2024-10-17", C: 100.0},
		{T: "2024-10-18", C: 100.0}, {T: "2024-10-19", C: 100.0},
	}}
	b := daily("yahoo", 100, 100, 100, 100, 100, 100, 100, 100, 100.2) // ends 10-20
	got := g.Accept(models.AssetEquity, a, b)
	if got.Status != models.GuardOK {
		t.Fatalf("expected OK, got %s (%s)", got.Status, got.Reason)
	}
	last, _ := got.Series.Last()
	if last.Close != 100.2 {
		t.Fatalf("expected the fresher yahoo series, got %v", last.Close)
	}
}
