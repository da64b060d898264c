package util

import (
	"strconv"
	"strings"
	"time"
)

// epochMillisCutoff separates epoch seconds from epoch milliseconds.
const epochMillisCutoff = 1e12

// ParseTime tries RFC3339 (with or without offset), bare date, and unix
// epoch strings. Returns (t, true) in UTC if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	// ISO without zone suffix is treated as UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return FromEpoch(float64(ts)), true
	}
	return time.Time{}, false
}

// FromEpoch converts an epoch number to UTC, treating values at or above
// 1e12 as milliseconds and everything below as seconds.
func FromEpoch(v float64) time.Time {
	if v >= epochMillisCutoff {
		ms := int64(v)
		return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

// ParseAnyTime normalizes the timestamp shapes vendors send: epoch numbers,
// numeric strings, and ISO strings.
func ParseAnyTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case float64:
		if x <= 0 {
			return time.Time{}, false
		}
		return FromEpoch(x), true
	case float32:
		return ParseAnyTime(float64(x))
	case int:
		return ParseAnyTime(float64(x))
	case int64:
		return ParseAnyTime(float64(x))
	case string:
		return ParseTime(strings.TrimSpace(x))
	default:
		return time.Time{}, false
	}
}

// SplitCanonical splits "BINANCE:BTCUSDT" into venue and ticker. Symbols
// without a venue prefix come back with an empty venue.
func SplitCanonical(symbol string) (venue, ticker string) {
	if i := strings.IndexByte(symbol, ':'); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return "", symbol
}

// ParseAnyFloat coerces vendor close values (numbers or numeric strings).
func ParseAnyFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
