package usecase

import (
	"sort"

	"SignalPull/internal/domain/models"
)

// Actionable reports whether the level set qualifies the instrument for
// signal emission. Near-miss tags are diagnostic only and never emit.
func Actionable(levels []models.LevelTag) bool {
	for _, l := range levels {
		switch l {
		case models.LevelRSILow, models.LevelNearBBLo:
		default:
			return true
		}
	}
	return false
}

// EmitGate applies the per-asset emission rule: crypto signals must be
// backed by two independent vendors, equities may emit single-source.
func EmitGate(asset models.AssetType, sourceCount int) bool {
	if asset == models.AssetCrypto {
		return sourceCount >= 2
	}
	return sourceCount >= 1
}

// DeriveConfidence grades a level set. High needs the deep-drawdown tier
// confirmed by an indicator tier; medium needs dual sourcing plus any
// indicator-backed tier; everything else is low.
func DeriveConfidence(levels []models.LevelTag, sourceCount int) models.Confidence {
	var n1, indicatorTier bool
	for _, l := range levels {
		switch l {
		case models.LevelN1:
			n1 = true
		case models.LevelN2, models.LevelN3, models.LevelN3C:
			indicatorTier = true
		}
	}
	if n1 && indicatorTier {
		return models.ConfidenceHigh
	}
	if sourceCount >= 2 && indicatorTier {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// RankActions flattens signals into the published action list: one row per
// symbol carrying its highest-priority level, ordered by level priority,
// confidence and symbol.
func RankActions(signals []models.Signal) []models.RankedAction {
	actions := make([]models.RankedAction, 0, len(signals))
	for _, s := range signals {
		level, ok := topLevel(s.Levels)
		if !ok {
			continue
		}
		actions = append(actions, models.RankedAction{
			Symbol:     s.Symbol,
			Level:      level,
			Confidence: s.Confidence,
			Sources:    s.Sources,
			Indicators: s.Indicators,
			Changes:    s.Changes,
		})
	}
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Less(actions[j]) })

	// One row per symbol; after the sort the first occurrence is the best.
	seen := make(map[string]struct{}, len(actions))
	out := actions[:0]
	for _, a := range actions {
		if _, dup := seen[a.Symbol]; dup {
			continue
		}
		seen[a.Symbol] = struct{}{}
		out = append(out, a)
	}
	return out
}

func topLevel(levels []models.LevelTag) (models.LevelTag, bool) {
	best, found := models.LevelTag(""), false
	for _, l := range levels {
		switch l {
		case models.LevelRSILow, models.LevelNearBBLo:
			continue
		}
		if !found || models.LevelPriority(l) < models.LevelPriority(best) {
			best, found = l, true
		}
	}
	return best, found
}
