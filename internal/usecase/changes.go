package usecase

import (
	"SignalPull/internal/domain/models"
)

// ComputeChanges derives the 7, 10 and 30 bar percentage changes from an
// ascending close series. A window needs w+1 bars and compares the last close
// against the close exactly w bars earlier; no interpolation, no nearest
// neighbour. Windows the series cannot cover stay nil, as does any window
// whose reference close is zero. Values keep full float precision; the tier
// thresholds compare against unrounded drawdowns, so rounding here would flip
// decisions at the boundaries.
func ComputeChanges(closes []float64) models.ChangeSet {
	return models.ChangeSet{
		Chg7d:  changeOver(closes, 7),
		Chg10d: changeOver(closes, 10),
		Chg30d: changeOver(closes, 30),
	}
}

func changeOver(closes []float64, w int) *float64 {
	n := len(closes)
	if n < w+1 {
		return nil
	}
	ref := closes[n-1-w]
	if ref == 0 {
		return nil
	}
	pct := (closes[n-1]/ref - 1) * 100
	return &pct
}
