package vendors

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/logger"
)

const defaultStooqURL = "https://stooq.com"

// Stooq serves daily bars as CSV (Date,Open,High,Low,Close,Volume).
type Stooq struct {
	log    *logger.Logger
	client *resty.Client
}

func NewStooq(log *logger.Logger, baseURL string, timeout time.Duration) *Stooq {
	if baseURL == "" {
		baseURL = defaultStooqURL
	}
	return &Stooq{log: log, client: newClient(baseURL, timeout)}
}

func (s *Stooq) Name() string { return "stooq" }

// FetchDaily downloads the instrument's daily history. Stooq tickers are
// lower case with a market suffix; bare symbols get the US suffix.
func (s *Stooq) FetchDaily(ctx context.Context, symbol string, bars int) models.RawSeries {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"s": stooqSymbol(symbol), "i": "d"}).
		Get("/q/d/l/")
	if err != nil {
		s.log.Warn("stooq fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.RawSeries{Vendor: s.Name()}
	}
	if resp.StatusCode() != 200 {
		s.log.Warn("stooq bad status", logger.String("symbol", symbol), logger.Int("status", resp.StatusCode()))
		return models.RawSeries{Vendor: s.Name()}
	}

	points := parseStooqCSV(string(resp.Body()), bars)
	return models.RawSeries{Vendor: s.Name(), Points: points}
}

func stooqSymbol(symbol string) string {
	sym := strings.ToLower(ticker(symbol))
	if !strings.Contains(sym, ".") {
		sym += ".us"
	}
	return sym
}

func parseStooqCSV(body string, bars int) []models.RawPoint {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}

	var points []models.RawPoint
	for _, row := range rows[1:] { // header row first
		if len(row) < 5 {
			continue
		}
		close, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			continue
		}
		points = append(points, models.RawPoint{T: row[0], C: close})
	}
	if bars > 0 && len(points) > bars {
		points = points[len(points)-bars:]
	}
	return points
}
