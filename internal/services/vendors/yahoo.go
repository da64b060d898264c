package vendors

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/logger"
)

const defaultYahooURL = "https://query1.finance.yahoo.com"

// Yahoo serves daily bars from the v8 chart endpoint: parallel arrays of
// epoch-second timestamps and closes, with nulls for missing sessions.
type Yahoo struct {
	log    *logger.Logger
	client *resty.Client
}

func NewYahoo(log *logger.Logger, baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = defaultYahooURL
	}
	return &Yahoo{log: log, client: newClient(baseURL, timeout)}
}

func (y *Yahoo) Name() string { return "yahoo" }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (y *Yahoo) FetchDaily(ctx context.Context, symbol string, bars int) models.RawSeries {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    yahooRange(bars),
		}).
		Get("/v8/finance/chart/" + ticker(symbol))
	if err != nil {
		y.log.Warn("yahoo fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.RawSeries{Vendor: y.Name()}
	}
	if resp.StatusCode() != 200 {
		y.log.Warn("yahoo bad status", logger.String("symbol", symbol), logger.Int("status", resp.StatusCode()))
		return models.RawSeries{Vendor: y.Name()}
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil || len(chart.Chart.Result) == 0 {
		y.log.Warn("yahoo unexpected payload", logger.String("symbol", symbol))
		return models.RawSeries{Vendor: y.Name()}
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return models.RawSeries{Vendor: y.Name()}
	}
	closes := result.Indicators.Quote[0].Close

	raw := models.RawSeries{Vendor: y.Name()}
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		raw.Times = append(raw.Times, strconv.FormatInt(ts, 10))
		raw.Closes = append(raw.Closes, *closes[i])
	}
	return raw
}

// yahooRange picks the smallest chart range that still covers the requested
// bar count, with slack for non-trading days.
func yahooRange(bars int) string {
	switch {
	case bars <= 20:
		return "1mo"
	case bars <= 60:
		return "3mo"
	case bars <= 120:
		return "6mo"
	}
	return "1y"
}
