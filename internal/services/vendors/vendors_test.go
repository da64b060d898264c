package vendors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SignalPull/internal/services/normalize"
	"SignalPull/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestStooqFetchDaily(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("s")
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2024-10-18,99,101,98,100.5,1000\n" +
			"2024-10-21,100,102,99,101.25,1200\n"))
	}))
	defer srv.Close()

	s := NewStooq(testLogger(t), srv.URL, time.Second)
	raw := s.FetchDaily(context.Background(), "AAPL", 60)
	if gotSymbol != "aapl.us" {
		t.Fatalf("symbol mapping: %q", gotSymbol)
	}
	series := normalize.Normalize(raw)
	if len(series) != 2 || series[1].Close != 101.25 {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestStooqBarLimit(t *testing.T) {
	pts := parseStooqCSV("Date,Open,High,Low,Close,Volume\n"+
		"2024-10-01,1,1,1,1,1\n2024-10-02,1,1,1,2,1\n2024-10-03,1,1,1,3,1\n", 2)
	if len(pts) != 2 || pts[0].C != 2.0 {
		t.Fatalf("expected trailing two bars, got %+v", pts)
	}
}

func TestYahooFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1729209600,1729296000,1729468800],
			"indicators":{"quote":[{"close":[100.1,null,101.2]}]}}]}}`))
	}))
	defer srv.Close()

	y := NewYahoo(testLogger(t), srv.URL, time.Second)
	series := normalize.Normalize(y.FetchDaily(context.Background(), "AAPL", 60))
	if len(series) != 2 {
		t.Fatalf("null close must be dropped, got %d points", len(series))
	}
	if series[0].Close != 100.1 || series[1].Close != 101.2 {
		t.Fatalf("unexpected closes: %v", series.Closes())
	}
}

func TestBinanceFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			[1729209600000,"67000","68000","66000","67500.5",123,1729295999999],
			[1729296000000,"67500","69000","67000","68250.25",456,1729382399999]
		]`))
	}))
	defer srv.Close()

	b := NewBinance(testLogger(t), srv.URL, time.Second)
	series := normalize.Normalize(b.FetchDaily(context.Background(), "BTCUSDT", 60))
	if len(series) != 2 || series[1].Close != 68250.25 {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestCoinGeckoDecimatesToDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two samples on 2024-10-18; the later one must win.
		w.Write([]byte(`{"prices":[
			[1729123200000,66000.0],
			[1729209600000,67000.0],
			[1729251000000,67400.0]
		]}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(testLogger(t), srv.URL, time.Second)
	series := normalize.Normalize(c.FetchDaily(context.Background(), "BTCUSDT", 60))
	if len(series) != 2 {
		t.Fatalf("expected one point per day, got %d", len(series))
	}
	if series[1].Close != 67400.0 {
		t.Fatalf("later same-day sample must win: %v", series.Closes())
	}
}

func TestCoinIDMapping(t *testing.T) {
	if coinID("BTCUSDT") != "bitcoin" {
		t.Fatalf("BTCUSDT -> %s", coinID("BTCUSDT"))
	}
	if coinID("AVAXUSDC") != "avalanche-2" {
		t.Fatalf("AVAXUSDC -> %s", coinID("AVAXUSDC"))
	}
	if coinID("PEPEUSDT") != "pepe" {
		t.Fatalf("unmapped coins fall back to lowercase id: %s", coinID("PEPEUSDT"))
	}
	if coinID("BINANCE:BTCUSDT") != "bitcoin" {
		t.Fatalf("venue prefix must be stripped: %s", coinID("BINANCE:BTCUSDT"))
	}
}

func TestVenuePrefixStripped(t *testing.T) {
	if got := stooqSymbol("NYSEARCA:VUG"); got != "vug.us" {
		t.Fatalf("NYSEARCA:VUG -> %s", got)
	}
	if got := stooqSymbol("AAPL"); got != "aapl.us" {
		t.Fatalf("AAPL -> %s", got)
	}
}

func TestVendorFailureYieldsEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewStooq(testLogger(t), srv.URL, time.Second)
	if raw := s.FetchDaily(context.Background(), "AAPL", 60); !raw.Empty() {
		t.Fatalf("expected empty series on 503, got %+v", raw)
	}
}

func TestBinanceDerivativesFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/premiumIndex":
			w.Write([]byte(`{"symbol":"BTCUSDT","lastFundingRate":"-0.00030000"}`))
		case "/fapi/v1/openInterest":
			w.Write([]byte(`{"symbol":"BTCUSDT","openInterest":"90123.456"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	d := NewBinanceDerivatives(testLogger(t), srv.URL, time.Second)
	reading, err := d.Fetch(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if reading.Funding != -0.0003 {
		t.Fatalf("funding = %v", reading.Funding)
	}
	if reading.OpenInterest != 90123.456 {
		t.Fatalf("open interest = %v", reading.OpenInterest)
	}
}

func TestBinanceDerivativesErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewBinanceDerivatives(testLogger(t), srv.URL, time.Second)
	if _, err := d.Fetch(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
