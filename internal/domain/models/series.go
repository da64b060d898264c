package models

import "time"

// PricePoint is a single daily close observation in UTC.
type PricePoint struct {
	TS    time.Time
	Close float64
}

// PriceSeries is an ascending, timestamp-deduplicated sequence of closes for
// one (instrument, vendor) pair. The zero value is an empty series.
type PriceSeries []PricePoint

// Closes returns the close column in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Last returns the most recent point and false when the series is empty.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// RawPoint is one row of a vendor response before normalization. T and C keep
// whatever the vendor sent (epoch numbers, ISO strings, floats, numeric strings).
type RawPoint struct {
	T any
	C any
}

// RawSeries carries a vendor response in whichever shape the vendor uses.
// Exactly one of the shape fields is expected to be populated; the normalizer
// tries them in a fixed order and degrades to an empty series.
type RawSeries struct {
	Vendor string

	// Columnar shape: parallel arrays {c: [...], t: [...]}.
	Closes []any
	Times  []any

	// List-of-points shape, possibly with vendor key aliases already folded
	// into RawPoint by the fetching client.
	Points []RawPoint

	// Map shape: timestamp -> close.
	ByTime map[string]any
}

// Empty reports whether no shape carries data.
func (r RawSeries) Empty() bool {
	return len(r.Closes) == 0 && len(r.Points) == 0 && len(r.ByTime) == 0
}

// GuardStatus describes how PriceGuard settled an instrument.
type GuardStatus string

const (
	GuardOK   GuardStatus = "OK"   // cross-validated against two vendors
	GuardPart GuardStatus = "PART" // single source, sanity-bounded
	GuardFail GuardStatus = "FAIL" // rejected
)

// Guard rejection reasons surfaced in diagnostics.
const (
	ReasonNone         = ""
	ReasonNoData       = "sem_dados"
	ReasonMisaligned   = "datas_desalinhadas"
	ReasonDivergence   = "divergencia"
	ReasonSanityBound  = "sanity_excedido"
	ReasonShortHistory = "historico_insuficiente"
)

// AcceptedClose is PriceGuard's verdict for one instrument: the chosen series
// (empty on rejection), provenance tag ("stooq|yahoo", "binance_only", ...)
// and the vendor names that backed it.
type AcceptedClose struct {
	Series     PriceSeries
	Provenance string
	Status     GuardStatus
	Reason     string
	Sources    []string
}

// Accepted reports whether the guard produced a usable series.
func (a AcceptedClose) Accepted() bool {
	return a.Status != GuardFail && len(a.Series) > 0
}
