package models

// IndicatorSet holds the per-instrument technical indicators computed from an
// accepted close series. Nil fields mean insufficient history, never zero.
type IndicatorSet struct {
	RSI14    *float64 `json:"rsi14"`
	ATR14    *float64 `json:"atr14"`
	ATR14Pct *float64 `json:"atr14_pct"`
	BBMA20   *float64 `json:"bb_ma20"`
	BBLower  *float64 `json:"bb_lower"`
	BBUpper  *float64 `json:"bb_upper"`
	Close    *float64 `json:"close"`
}

// ChangeSet holds trailing percentage changes over fixed bar windows.
// Nil means the series is too short for that window.
type ChangeSet struct {
	Chg7d  *float64 `json:"chg_7d_pct"`
	Chg10d *float64 `json:"chg_10d_pct"`
	Chg30d *float64 `json:"chg_30d_pct"`
}

// Effective returns the drawdown used by the classifier: the 7-bar change when
// available, else 10-bar, else 30-bar.
func (c ChangeSet) Effective() *float64 {
	if c.Chg7d != nil {
		return c.Chg7d
	}
	if c.Chg10d != nil {
		return c.Chg10d
	}
	return c.Chg30d
}

// Derivatives are crypto-only confirming metrics. Nil fields mean the source
// did not answer or no prior snapshot exists; rules treat that as not met.
type Derivatives struct {
	Funding    *float64 `json:"funding"`
	OIChg3dPct *float64 `json:"oi_chg_3d_pct"`
}

// DerivativeReading is a raw per-run observation persisted in the snapshot
// store so the next runs can compute the 3-day open-interest change.
type DerivativeReading struct {
	Symbol       string  `json:"symbol"`
	Funding      float64 `json:"funding"`
	OpenInterest float64 `json:"open_interest"`
}
