package util

import (
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeBareDate(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected midnight UTC, got %v", got)
	}
}

func TestFromEpochSecondsVsMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if got := FromEpoch(float64(want.Unix())); !got.Equal(want) {
		t.Fatalf("seconds: got %v", got)
	}
	if got := FromEpoch(float64(want.UnixMilli())); !got.Equal(want) {
		t.Fatalf("millis: got %v", got)
	}
}

func TestParseAnyTimeNumericString(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got, ok := ParseAnyTime("1728555010")
	if !ok || !got.Equal(want) {
		t.Fatalf("got %v ok=%v", got, ok)
	}
}

func TestSplitCanonical(t *testing.T) {
	venue, ticker := SplitCanonical("BINANCE:BTCUSDT")
	if venue != "BINANCE" || ticker != "BTCUSDT" {
		t.Fatalf("got %q %q", venue, ticker)
	}
	venue, ticker = SplitCanonical("VUG")
	if venue != "" || ticker != "VUG" {
		t.Fatalf("got %q %q", venue, ticker)
	}
}

func TestParseAnyFloat(t *testing.T) {
	if v, ok := ParseAnyFloat("101.25"); !ok || v != 101.25 {
		t.Fatalf("got %v ok=%v", v, ok)
	}
	if _, ok := ParseAnyFloat("n/a"); ok {
		t.Fatalf("expected not ok")
	}
}
