package vendors

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/logger"
)

const defaultCoinGeckoURL = "https://api.coingecko.com"

// coinIDs maps exchange base assets to CoinGecko coin ids. Symbols outside
// the map are tried as a lowercase id, which covers coins whose id equals
// their name.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
}

// CoinGecko serves price history as [epochMs, price] pairs, sometimes more
// than one per day near the end of the range; the series is decimated to the
// last price per UTC day before handing it on.
type CoinGecko struct {
	log    *logger.Logger
	client *resty.Client
}

func NewCoinGecko(log *logger.Logger, baseURL string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	return &CoinGecko{log: log, client: newClient(baseURL, timeout)}
}

func (c *CoinGecko) Name() string { return "coingecko" }

type geckoChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (c *CoinGecko) FetchDaily(ctx context.Context, symbol string, bars int) models.RawSeries {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(bars),
			"interval":    "daily",
		}).
		Get("/api/v3/coins/" + coinID(symbol) + "/market_chart")
	if err != nil {
		c.log.Warn("coingecko fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.RawSeries{Vendor: c.Name()}
	}
	if resp.StatusCode() != 200 {
		c.log.Warn("coingecko bad status", logger.String("symbol", symbol), logger.Int("status", resp.StatusCode()))
		return models.RawSeries{Vendor: c.Name()}
	}

	var chart geckoChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		c.log.Warn("coingecko unexpected payload", logger.String("symbol", symbol))
		return models.RawSeries{Vendor: c.Name()}
	}

	byDay := make(map[string]any, len(chart.Prices))
	for _, p := range chart.Prices {
		day := time.UnixMilli(int64(p[0])).UTC().Format("2006-01-02")
		byDay[day] = p[1] // later samples of the same day win
	}
	return models.RawSeries{Vendor: c.Name(), ByTime: byDay}
}

// coinID resolves an exchange pair symbol like BTCUSDT to a CoinGecko id.
func coinID(symbol string) string {
	base := strings.ToUpper(ticker(symbol))
	for _, quote := range []string{"USDT", "USDC", "BUSD", "USD"} {
		if strings.HasSuffix(base, quote) && len(base) > len(quote) {
			base = strings.TrimSuffix(base, quote)
			break
		}
	}
	if id, ok := coinIDs[base]; ok {
		return id
	}
	return strings.ToLower(base)
}
