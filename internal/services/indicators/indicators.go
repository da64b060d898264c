package indicators

import (
	"math"

	"SignalPull/internal/domain/models"
)

const (
	rsiPeriod = 14
	bbPeriod  = 20
	bbWidth   = 2.0
)

// Compute derives RSI(14), the close-only ATR(14) proxy and Bollinger
// Bands(20,2) from an ascending close series. Fields stay nil when the
// series is too short; computation runs at full float precision and only
// the published values are rounded (2 decimals for RSI and percentages,
// 6 for price-scale values).
func Compute(closes []float64) models.IndicatorSet {
	var out models.IndicatorSet
	n := len(closes)
	if n == 0 {
		return out
	}

	out.Close = ptr(round(closes[n-1], 6))

	if n >= rsiPeriod+1 {
		if v, ok := rsi(closes, rsiPeriod); ok {
			out.RSI14 = ptr(round(v, 2))
		}
		if v, ok := atrProxy(closes, rsiPeriod); ok {
			out.ATR14 = ptr(round(v, 6))
			if closes[n-1] != 0 {
				out.ATR14Pct = ptr(round(v/closes[n-1]*100, 2))
			}
		}
	}

	if n >= bbPeriod {
		ma, std := meanStd(closes[n-bbPeriod:])
		out.BBMA20 = ptr(round(ma, 6))
		out.BBLower = ptr(round(ma-bbWidth*std, 6))
		out.BBUpper = ptr(round(ma+bbWidth*std, 6))
	}

	return out
}

// rsi implements Wilder's RSI: the up/down deltas are smoothed with a
// recursive average avg = alpha*x + (1-alpha)*avg, alpha = 1/period, seeded
// with the first delta and considered defined only once period deltas have
// been absorbed. Returns false when the smoothed down-average is zero (RSI
// undefined rather than pinned at 100).
func rsi(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}
	alpha := 1.0 / float64(period)
	var avgUp, avgDown float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		up, down := math.Max(delta, 0), math.Max(-delta, 0)
		if i == 1 {
			avgUp, avgDown = up, down
			continue
		}
		avgUp = alpha*up + (1-alpha)*avgUp
		avgDown = alpha*down + (1-alpha)*avgDown
	}
	if avgDown == 0 {
		return 0, false
	}
	rs := avgUp / avgDown
	return 100 - 100/(1+rs), true
}

// atrProxy smooths |close[i]-close[i-1]| with the same Wilder average; with
// no OHLC data the absolute close-to-close move stands in for true range.
func atrProxy(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}
	alpha := 1.0 / float64(period)
	var atr float64
	for i := 1; i < len(closes); i++ {
		tr := math.Abs(closes[i] - closes[i-1])
		if i == 1 {
			atr = tr
			continue
		}
		atr = alpha*tr + (1-alpha)*atr
	}
	return atr, true
}

// meanStd returns the mean and population standard deviation of the window.
func meanStd(window []float64) (mean, std float64) {
	n := float64(len(window))
	for _, v := range window {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / n)
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func ptr(v float64) *float64 { return &v }
