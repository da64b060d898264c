package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/logger"
)

const defaultBinanceFuturesURL = "https://fapi.binance.com"

// BinanceDerivatives reads the perpetual-futures confirming metrics: the
// last funding rate from the premium index and the current open interest.
// Unlike the bar sources this one reports errors, because a missing reading
// must keep the snapshot store untouched rather than record a zero.
type BinanceDerivatives struct {
	log    *logger.Logger
	client *resty.Client
}

func NewBinanceDerivatives(log *logger.Logger, baseURL string, timeout time.Duration) *BinanceDerivatives {
	if baseURL == "" {
		baseURL = defaultBinanceFuturesURL
	}
	return &BinanceDerivatives{log: log, client: newClient(baseURL, timeout)}
}

type premiumIndex struct {
	LastFundingRate string `json:"lastFundingRate"`
}

type openInterest struct {
	OpenInterest string `json:"openInterest"`
}

func (b *BinanceDerivatives) Fetch(ctx context.Context, symbol string) (models.DerivativeReading, error) {
	reading := models.DerivativeReading{Symbol: symbol}
	pair := ticker(symbol)

	funding, err := b.fundingRate(ctx, pair)
	if err != nil {
		return reading, fmt.Errorf("funding rate %s: %w", symbol, err)
	}
	oi, err := b.openInterest(ctx, pair)
	if err != nil {
		return reading, fmt.Errorf("open interest %s: %w", symbol, err)
	}

	reading.Funding = funding
	reading.OpenInterest = oi
	return reading, nil
}

func (b *BinanceDerivatives) fundingRate(ctx context.Context, symbol string) (float64, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/fapi/v1/premiumIndex")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("status %d", resp.StatusCode())
	}
	var idx premiumIndex
	if err := json.Unmarshal(resp.Body(), &idx); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(idx.LastFundingRate, 64)
}

func (b *BinanceDerivatives) openInterest(ctx context.Context, symbol string) (float64, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/fapi/v1/openInterest")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("status %d", resp.StatusCode())
	}
	var oi openInterest
	if err := json.Unmarshal(resp.Body(), &oi); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(oi.OpenInterest, 64)
}
