package normalize

import (
	"math"
	"sort"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/util"
)

func validClose(v any) (float64, bool) {
	c, ok := util.ParseAnyFloat(v)
	if !ok || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, false
	}
	return c, true
}

// Normalize coerces a vendor response in any recognized shape into a canonical
// PriceSeries: ascending timestamps, UTC, deduplicated (last occurrence wins),
// rows with an unparseable close or timestamp dropped. Unrecognized shapes
// produce an empty series; this function never fails.
//
// Shape priority: columnar arrays, then list of points, then timestamp map.
func Normalize(raw models.RawSeries) models.PriceSeries {
	var pts []models.PricePoint

	switch {
	case len(raw.Closes) > 0:
		pts = fromColumnar(raw.Closes, raw.Times)
	case len(raw.Points) > 0:
		pts = fromPoints(raw.Points)
	case len(raw.ByTime) > 0:
		pts = fromMap(raw.ByTime)
	default:
		return nil
	}

	if len(pts) == 0 {
		return nil
	}

	sort.SliceStable(pts, func(i, j int) bool { return pts[i].TS.Before(pts[j].TS) })

	// Dedup by timestamp keeping the last occurrence in input order; after the
	// stable sort, equal timestamps retain input order, so the later row wins.
	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].TS.Equal(p.TS) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return models.PriceSeries(out)
}

func fromColumnar(closes, times []any) []models.PricePoint {
	pts := make([]models.PricePoint, 0, len(closes))
	for i, cv := range closes {
		if i >= len(times) {
			break
		}
		ts, ok := util.ParseAnyTime(times[i])
		if !ok {
			continue
		}
		c, ok := validClose(cv)
		if !ok {
			continue
		}
		pts = append(pts, models.PricePoint{TS: ts, Close: c})
	}
	return pts
}

func fromPoints(rows []models.RawPoint) []models.PricePoint {
	pts := make([]models.PricePoint, 0, len(rows))
	for _, r := range rows {
		ts, ok := util.ParseAnyTime(r.T)
		if !ok {
			continue
		}
		c, ok := validClose(r.C)
		if !ok {
			continue
		}
		pts = append(pts, models.PricePoint{TS: ts, Close: c})
	}
	return pts
}

func fromMap(m map[string]any) []models.PricePoint {
	pts := make([]models.PricePoint, 0, len(m))
	for k, v := range m {
		ts, ok := util.ParseAnyTime(k)
		if !ok {
			continue
		}
		c, ok := validClose(v)
		if !ok {
			continue
		}
		pts = append(pts, models.PricePoint{TS: ts, Close: c})
	}
	return pts
}
