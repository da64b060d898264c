package priceguard

import (
	"math"
	"time"

	"SignalPull/internal/domain/models"
	"SignalPull/internal/services/normalize"
)

// Thresholds are the per-asset-class acceptance constants.
type Thresholds struct {
	// DeltaMax is the maximum relative divergence between the latest aligned
	// closes of the two vendors (0.008 = 0.8%).
	DeltaMax float64
	// SanityMaxPct bounds the absolute last-7-bar percentage move when only
	// one vendor answered.
	SanityMaxPct float64
}

// EquityThresholds and CryptoThresholds are the canonical policy constants.
var (
	EquityThresholds = Thresholds{DeltaMax: 0.008, SanityMaxPct: 25}
	CryptoThresholds = Thresholds{DeltaMax: 0.0035, SanityMaxPct: 40}
)

// minSingleSourceBars is the shortest series the single-source path accepts.
const minSingleSourceBars = 8

// Guard decides whether an instrument's price is trustworthy enough to use.
type Guard struct {
	eq Thresholds
	cr Thresholds
}

func New() *Guard {
	return &Guard{eq: EquityThresholds, cr: CryptoThresholds}
}

// NewWithThresholds overrides the policy constants (tests, tuning).
func NewWithThresholds(eq, cr Thresholds) *Guard {
	return &Guard{eq: eq, cr: cr}
}

func (g *Guard) thresholds(asset models.AssetType) Thresholds {
	if asset == models.AssetCrypto {
		return g.cr
	}
	return g.eq
}

// Accept reconciles up to two vendor series for one instrument.
//
// Both empty: reject. One present: accept only when the series has at least
// 8 bars and its own last-7-bar move stays inside the sanity bound. Both
// present: inner-join on UTC date; reject when no date overlaps, accept the
// more recently timestamped series when the latest aligned closes diverge by
// at most DeltaMax, reject otherwise. A misbehaving vendor can therefore
// never pass as a lone outlier.
func (g *Guard) Accept(asset models.AssetType, primary, secondary models.RawSeries) models.AcceptedClose {
	th := g.thresholds(asset)

	p := normalize.Normalize(primary)
	s := normalize.Normalize(secondary)

	switch {
	case len(p) == 0 && len(s) == 0:
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonNoData}
	case len(s) == 0:
		return g.single(p, primary.Vendor, th)
	case len(p) == 0:
		return g.single(s, secondary.Vendor, th)
	}

	pi, si, ok := latestAlignedByDate(p, s)
	if !ok {
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonMisaligned}
	}

	// Relative divergence against the smaller aligned close, so the verdict
	// does not depend on which vendor is primary.
	base := math.Min(p[pi].Close, s[si].Close)
	if base <= 0 {
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonDivergence}
	}
	div := math.Abs(s[si].Close-p[pi].Close) / base
	if div > th.DeltaMax {
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonDivergence}
	}

	// Agreement: prefer the series with the fresher last timestamp, primary
	// winning ties.
	chosen := p
	if lastTS(s).After(lastTS(p)) {
		chosen = s
	}
	return models.AcceptedClose{
		Series:     chosen,
		Provenance: primary.Vendor + "|" + secondary.Vendor,
		Status:     models.GuardOK,
		Sources:    []string{primary.Vendor, secondary.Vendor},
	}
}

// single applies the degraded sanity-bounded path when only one vendor
// answered. Too few bars to even run the sanity check is its own rejection,
// distinct from a check that ran and failed.
func (g *Guard) single(series models.PriceSeries, vendor string, th Thresholds) models.AcceptedClose {
	if len(series) < minSingleSourceBars {
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonShortHistory}
	}
	move, ok := last7Move(series)
	if !ok || math.Abs(move) > th.SanityMaxPct {
		return models.AcceptedClose{Status: models.GuardFail, Reason: models.ReasonSanityBound}
	}
	return models.AcceptedClose{
		Series:     series,
		Provenance: vendor + "_only",
		Status:     models.GuardPart,
		Sources:    []string{vendor},
	}
}

// last7Move returns the percentage move between the last close and the close
// seven bars earlier.
func last7Move(s models.PriceSeries) (float64, bool) {
	n := len(s)
	if n < minSingleSourceBars {
		return 0, false
	}
	old := s[n-8].Close
	if old == 0 {
		return 0, false
	}
	return (s[n-1].Close/old - 1) * 100, true
}

// latestAlignedByDate finds the most recent UTC date present in both series
// and returns the index of that date's point in each.
func latestAlignedByDate(p, s models.PriceSeries) (pi, si int, ok bool) {
	sByDate := make(map[string]int, len(s))
	for i, pt := range s {
		sByDate[pt.TS.Format("2006-01-02")] = i // last point of each date wins
	}
	for i := len(p) - 1; i >= 0; i-- {
		if j, found := sByDate[p[i].TS.Format("2006-01-02")]; found {
			return i, j, true
		}
	}
	return 0, 0, false
}

func lastTS(s models.PriceSeries) time.Time {
	return s[len(s)-1].TS
}
