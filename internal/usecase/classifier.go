package usecase

import (
	"math"

	"SignalPull/internal/domain/models"
)

// Drawdown thresholds (percent) and indicator gates for the signal tiers.
const (
	n1Drawdown = -22
	n2Drawdown = -12
	n3Drawdown = -8

	n3cFundingMax  = -0.0002
	n3cOIChangeMax = -8
)

// ClassifyInput carries everything the tier rules look at for one instrument.
// All pointer fields follow the null-means-unknown convention; a rule clause
// with an unknown operand evaluates false rather than erroring.
type ClassifyInput struct {
	Asset       models.AssetType
	GuardStatus models.GuardStatus
	Window      models.WindowStatus
	Changes     models.ChangeSet
	Indicators  models.IndicatorSet
	Derivatives models.Derivatives
}

// Classify maps one instrument's drawdown, indicators and derivative metrics
// to a set of level tags. Main tiers are deliberately non-exclusive: a deep
// drawdown can carry N1, N2 and N3 at once. When the history is too short for
// indicators the Lite tiers fire instead (first match only), and near-miss
// tags are produced only when nothing else fired. The drawdown tiers need
// change data, but the near-miss tags read the indicators alone, so a series
// without a computable change can still surface them.
func Classify(in ClassifyInput) []models.LevelTag {
	accepted := in.GuardStatus == models.GuardOK || in.GuardStatus == models.GuardPart
	if !accepted {
		return nil
	}
	chg := in.Changes.Effective()

	if liteMode(in) {
		if chg == nil {
			return nil
		}
		if tag, ok := liteTier(*chg); ok {
			return []models.LevelTag{tag}
		}
		return nil
	}

	var levels []models.LevelTag
	if chg != nil {
		if *chg <= n1Drawdown {
			levels = append(levels, models.LevelN1)
		}
		if *chg <= n2Drawdown && in.GuardStatus == models.GuardOK && n2IndicatorGate(in.Indicators) {
			levels = append(levels, models.LevelN2)
		}
		if *chg <= n3Drawdown && in.GuardStatus == models.GuardOK && n3IndicatorGate(in.Indicators) {
			levels = append(levels, models.LevelN3)
		}
		if in.Asset == models.AssetCrypto && *chg <= n3Drawdown && n3cDerivativeGate(in.Derivatives) {
			levels = append(levels, models.LevelN3C)
		}
	}
	if len(levels) > 0 {
		return levels
	}
	return nearMisses(in.Indicators)
}

// liteMode is on when the bar window was flagged short or when none of the
// indicator inputs survived computation.
func liteMode(in ClassifyInput) bool {
	if in.Window == models.WindowShort {
		return true
	}
	ind := in.Indicators
	return ind.RSI14 == nil && ind.BBMA20 == nil && ind.ATR14 == nil
}

func liteTier(chg float64) (models.LevelTag, bool) {
	switch {
	case chg <= n1Drawdown:
		return models.LevelLiteN1, true
	case chg <= n2Drawdown:
		return models.LevelLiteN2, true
	case chg <= n3Drawdown:
		return models.LevelLiteN3, true
	}
	return "", false
}

// n2IndicatorGate: RSI in [38,50], or the close sits at least 1.5 ATR away
// from the 20-bar mean.
func n2IndicatorGate(ind models.IndicatorSet) bool {
	if ind.RSI14 != nil && *ind.RSI14 >= 38 && *ind.RSI14 <= 50 {
		return true
	}
	if ind.Close != nil && ind.BBMA20 != nil && ind.ATR14 != nil {
		return math.Abs(*ind.Close-*ind.BBMA20) >= 1.5**ind.ATR14
	}
	return false
}

// n3IndicatorGate: RSI in [40,55], or the close at or under the lower band.
func n3IndicatorGate(ind models.IndicatorSet) bool {
	if ind.RSI14 != nil && *ind.RSI14 >= 40 && *ind.RSI14 <= 55 {
		return true
	}
	return ind.Close != nil && ind.BBLower != nil && *ind.Close <= *ind.BBLower
}

// n3cDerivativeGate needs both derivative metrics present; a missing funding
// rate or open-interest change disqualifies rather than approximates.
func n3cDerivativeGate(d models.Derivatives) bool {
	return d.Funding != nil && *d.Funding <= n3cFundingMax &&
		d.OIChg3dPct != nil && *d.OIChg3dPct <= n3cOIChangeMax
}

func nearMisses(ind models.IndicatorSet) []models.LevelTag {
	var out []models.LevelTag
	if ind.RSI14 != nil && *ind.RSI14 < 35 {
		out = append(out, models.LevelRSILow)
	}
	if ind.Close != nil && ind.BBLower != nil && *ind.Close > 0 &&
		(*ind.Close-*ind.BBLower)/(*ind.Close) < 0.01 {
		out = append(out, models.LevelNearBBLo)
	}
	return out
}
