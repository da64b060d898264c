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

const defaultBinanceURL = "https://api.binance.com"

// Binance serves daily klines: arrays of
// [openTimeMs, open, high, low, close, volume, closeTimeMs, ...]
// with the prices encoded as strings.
type Binance struct {
	log    *logger.Logger
	client *resty.Client
}

func NewBinance(log *logger.Logger, baseURL string, timeout time.Duration) *Binance {
	if baseURL == "" {
		baseURL = defaultBinanceURL
	}
	return &Binance{log: log, client: newClient(baseURL, timeout)}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) FetchDaily(ctx context.Context, symbol string, bars int) models.RawSeries {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   ticker(symbol),
			"interval": "1d",
			"limit":    strconv.Itoa(bars),
		}).
		Get("/api/v3/klines")
	if err != nil {
		b.log.Warn("binance fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.RawSeries{Vendor: b.Name()}
	}
	if resp.StatusCode() != 200 {
		b.log.Warn("binance bad status", logger.String("symbol", symbol), logger.Int("status", resp.StatusCode()))
		return models.RawSeries{Vendor: b.Name()}
	}

	var klines [][]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &klines); err != nil {
		b.log.Warn("binance unexpected payload", logger.String("symbol", symbol))
		return models.RawSeries{Vendor: b.Name()}
	}

	raw := models.RawSeries{Vendor: b.Name()}
	for _, k := range klines {
		if len(k) < 5 {
			continue
		}
		var openMs float64
		var closeStr string
		if json.Unmarshal(k[0], &openMs) != nil || json.Unmarshal(k[4], &closeStr) != nil {
			continue
		}
		raw.Points = append(raw.Points, models.RawPoint{T: openMs, C: closeStr})
	}
	return raw
}
