package models

import "time"

// AssetType splits the universe into the two threshold classes.
type AssetType string

const (
	AssetEquity AssetType = "eq"
	AssetCrypto AssetType = "crypto"
)

// WindowStatus flags whether the accepted series covers the target window
// plus full indicator history.
type WindowStatus string

const (
	WindowTarget WindowStatus = "TARGET"
	WindowShort  WindowStatus = "SHORT_WINDOW"
)

// LevelTag is the closed set of opportunity levels. Keep the switch in
// LevelPriority exhaustive when adding tags.
type LevelTag string

const (
	LevelN1       LevelTag = "N1"
	LevelN2       LevelTag = "N2"
	LevelN3       LevelTag = "N3"
	LevelN3C      LevelTag = "N3C"
	LevelLiteN1   LevelTag = "N_LITE_N1"
	LevelLiteN2   LevelTag = "N_LITE_N2"
	LevelLiteN3   LevelTag = "N_LITE_N3"
	LevelRSILow   LevelTag = "Nx_RSI_LOW"
	LevelNearBBLo LevelTag = "Nx_NEAR_BB_LOWER"
)

// LevelPriority orders actionable tiers for ranking; lower ranks first.
// Lite and near-miss tags share a sentinel bucket below all main tiers.
func LevelPriority(l LevelTag) int {
	switch l {
	case LevelN1:
		return 1
	case LevelN2:
		return 2
	case LevelN3C:
		return 3
	case LevelN3:
		return 4
	case LevelLiteN1, LevelLiteN2, LevelLiteN3, LevelRSILow, LevelNearBBLo:
		return 9
	default:
		return 9
	}
}

// Confidence grades a signal from its level/source combination.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceScore maps confidence to a rank; lower sorts first.
func ConfidenceScore(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// Signal is the per-instrument unit of output for a run.
type Signal struct {
	Symbol      string       `json:"symbol_canonical"`
	AssetType   AssetType    `json:"asset_type"`
	WindowUsed  string       `json:"window_used"`
	Indicators  IndicatorSet `json:"indicators"`
	Changes     ChangeSet    `json:"changes"`
	Derivatives *Derivatives `json:"derivatives,omitempty"`
	Levels      []LevelTag   `json:"levels"`
	Confidence  Confidence   `json:"confidence"`
	Sources     []string     `json:"sources"`
}

// RankedAction is one row of the final priority-ordered, per-symbol
// deduplicated view published downstream.
type RankedAction struct {
	Symbol     string       `json:"symbol"`
	Level      LevelTag     `json:"level"`
	Confidence Confidence   `json:"confidence"`
	Sources    []string     `json:"sources"`
	Indicators IndicatorSet `json:"metrics"`
	Changes    ChangeSet    `json:"changes"`
}

// Less orders actions by level priority, then confidence, then symbol.
func (a RankedAction) Less(b RankedAction) bool {
	pa, pb := LevelPriority(a.Level), LevelPriority(b.Level)
	if pa != pb {
		return pa < pb
	}
	ca, cb := ConfidenceScore(a.Confidence), ConfidenceScore(b.Confidence)
	if ca != cb {
		return ca < cb
	}
	return a.Symbol < b.Symbol
}

// Diagnostic is the full per-instrument record kept for every symbol in the
// universe, including rejected and near-miss ones.
type Diagnostic struct {
	Symbol       string       `json:"symbol_canonical"`
	AssetType    AssetType    `json:"asset_type"`
	Provenance   string       `json:"provenance"`
	GuardStatus  GuardStatus  `json:"priceguard"`
	GuardReason  string       `json:"priceguard_reason,omitempty"`
	WindowStatus WindowStatus `json:"window_status"`
	Indicators   IndicatorSet `json:"indicators"`
	Changes      ChangeSet    `json:"changes"`
	Derivatives  *Derivatives `json:"derivatives,omitempty"`
	Levels       []LevelTag   `json:"levels"`
	Sources      []string     `json:"sources"`
}

// RunResult aggregates one pipeline run.
type RunResult struct {
	StartedAt   time.Time      `json:"started_at_utc"`
	FinishedAt  time.Time      `json:"finished_at_utc"`
	Signals     []Signal       `json:"signals"`
	Actions     []RankedAction `json:"actions"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}
