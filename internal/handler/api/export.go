package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	models "SignalPull/internal/domain/models"
	icache "SignalPull/internal/service/cache"
	"SignalPull/internal/service/metrics"
	"SignalPull/internal/service/ratelimit"
	applogger "SignalPull/pkg/logger"
)

const exportCacheTTL = 30 * time.Second

// ExportHandler serves the flat file-style views of the latest run for
// spreadsheet and batch consumers: the ranked action list as JSON or CSV and
// the full diagnostics as CSV. Responses are cached per run and rate limited
// per caller.
type ExportHandler struct {
	pipe  RunController
	cache icache.BytesCache
	rl    *ratelimit.Limiter
	l     *applogger.Logger
}

func NewExportHandler(pipe RunController) *ExportHandler {
	metrics.Register()
	return &ExportHandler{pipe: pipe, rl: ratelimit.New()}
}

func (h *ExportHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *ExportHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *ExportHandler) ActionsJSON() http.HandlerFunc {
	return h.export("actions_json", "application/json", func(run *models.RunResult) ([]byte, error) {
		return json.Marshal(run.Actions)
	})
}

func (h *ExportHandler) ActionsCSV() http.HandlerFunc {
	return h.export("actions_csv", "text/csv", actionsCSV)
}

func (h *ExportHandler) DiagnosticsCSV() http.HandlerFunc {
	return h.export("diagnostics_csv", "text/csv", diagnosticsCSV)
}

func (h *ExportHandler) export(endpoint, contentType string, render func(*models.RunResult) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() { metrics.ExportLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		if !h.rl.Allow(r.RemoteAddr+":"+endpoint, 5, 2) {
			if h.l != nil {
				h.l.Warn("export rate_limited",
					applogger.String("endpoint", endpoint),
					applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}

		run := h.pipe.LastRun()
		if run == nil {
			http.Error(w, "no completed run yet", http.StatusNotFound)
			return
		}

		cacheKey := "export:" + endpoint + ":" + run.StartedAt.Format(time.RFC3339)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("export cache_get_error", applogger.Error(err))
				}
			} else if ok {
				metrics.ExportCacheHits.WithLabelValues(endpoint).Inc()
				w.Header().Set("Content-Type", contentType)
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("export write_error", applogger.Error(err))
				}
				return
			}
		}

		b, err := render(run)
		if err != nil {
			metrics.ExportErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("export render_error",
					applogger.String("endpoint", endpoint), applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, exportCacheTTL); err != nil && h.l != nil {
				h.l.Warn("export cache_set_error", applogger.Error(err))
			}
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("export write_error", applogger.Error(err))
		}
	}
}

var actionsHeader = []string{
	"symbol", "level", "confidence", "sources",
	"close", "rsi14", "chg_7d_pct", "chg_10d_pct", "chg_30d_pct",
}

func actionsCSV(run *models.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(actionsHeader); err != nil {
		return nil, err
	}
	for _, a := range run.Actions {
		row := []string{
			a.Symbol,
			string(a.Level),
			string(a.Confidence),
			joinSources(a.Sources),
			floatCell(a.Indicators.Close),
			floatCell(a.Indicators.RSI14),
			floatCell(a.Changes.Chg7d),
			floatCell(a.Changes.Chg10d),
			floatCell(a.Changes.Chg30d),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var diagnosticsHeader = []string{
	"symbol", "asset", "provenance", "priceguard", "priceguard_reason",
	"window_status", "levels", "close", "rsi14", "chg_eff_pct",
}

func diagnosticsCSV(run *models.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(diagnosticsHeader); err != nil {
		return nil, err
	}
	for _, d := range run.Diagnostics {
		row := []string{
			d.Symbol,
			string(d.AssetType),
			d.Provenance,
			string(d.GuardStatus),
			d.GuardReason,
			string(d.WindowStatus),
			joinLevelTags(d.Levels),
			floatCell(d.Indicators.Close),
			floatCell(d.Indicators.RSI14),
			floatCell(d.Changes.Effective()),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func joinSources(sources []string) string {
	out := ""
	for i, s := range sources {
		if i > 0 {
			out += "|"
		}
		out += s
	}
	return out
}

func joinLevelTags(levels []models.LevelTag) string {
	out := ""
	for i, l := range levels {
		if i > 0 {
			out += "|"
		}
		out += string(l)
	}
	return out
}
