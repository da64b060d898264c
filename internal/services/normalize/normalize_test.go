package normalize

import (
	"math"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
)

func TestNormalizeColumnar(t *testing.T) {
	raw := models.RawSeries{
		Closes: []any{100.0, "101.5", 102.0},
		Times:  []any{"2024-10-08", "2024-10-09T00:00:00Z", float64(1728518400)},
	}
	got := Normalize(raw)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].Close != 100.0 || got[2].Close != 102.0 {
		t.Fatalf("unexpected closes: %v", got.Closes())
	}
	for i := 1; i < len(got); i++ {
		if !got[i].TS.After(got[i-1].TS) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}

func TestNormalizePointsSortsAndDedups(t *testing.T) {
	raw := models.RawSeries{Points: []models.RawPoint{
		{T: "2024-10-10", C: 10.0},
		{T: "2024-10-08", C: 8.0},
		{T: "2024-10-10", C: 11.0}, // duplicate date, last wins
		{T: "2024-10-09", C: 9.0},
	}}
	got := Normalize(raw)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[2].Close != 11.0 {
		t.Fatalf("last-wins dedup failed: %v", got.Closes())
	}
	if got[0].Close != 8.0 || got[1].Close != 9.0 {
		t.Fatalf("not sorted: %v", got.Closes())
	}
}

func TestNormalizeDropsBadRows(t *testing.T) {
	raw := models.RawSeries{Points: []models.RawPoint{
		{T: "2024-10-08", C: "not-a-number"},
		{T: "garbage", C: 9.0},
		{T: "2024-10-09", C: math.NaN()},
		{T: "2024-10-10", C: 10.0},
	}}
	got := Normalize(raw)
	if len(got) != 1 || got[0].Close != 10.0 {
		t.Fatalf("expected single valid row, got %v", got.Closes())
	}
}

func TestNormalizeEpochMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	raw := models.RawSeries{Points: []models.RawPoint{
		{T: float64(want.UnixMilli()), C: 1.0},
	}}
	got := Normalize(raw)
	if len(got) != 1 || !got[0].TS.Equal(want) {
		t.Fatalf("millis heuristic failed: %v", got)
	}
}

func TestNormalizeByTimeMap(t *testing.T) {
	raw := models.RawSeries{ByTime: map[string]any{
		"2024-10-09": 9.0,
		"2024-10-08": 8.0,
	}}
	got := Normalize(raw)
	if len(got) != 2 || got[0].Close != 8.0 {
		t.Fatalf("map shape failed: %v", got.Closes())
	}
}

func TestNormalizeUnknownShape(t *testing.T) {
	if got := Normalize(models.RawSeries{}); got != nil {
		t.Fatalf("expected empty series, got %v", got)
	}
}
