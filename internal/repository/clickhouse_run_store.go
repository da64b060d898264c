package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"SignalPull/internal/domain/models"
	domrepo "SignalPull/internal/domain/repository"
	pkgch "SignalPull/pkg/clickhouse"
	applogger "SignalPull/pkg/logger"
)

// CHRunStore persists run output to ClickHouse: one row per emitted signal
// and one per universe instrument with its guard verdict and metrics.
type CHRunStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHRunStore(ch *pkgch.Client, l *applogger.Logger) domrepo.RunStore {
	return &CHRunStore{client: ch, db: ch.DB(), l: l}
}

var schemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS signalpull`,
	`CREATE TABLE IF NOT EXISTS signalpull.signals (
		run_started  DateTime,
		symbol       String,
		asset        String,
		window_used  String,
		levels       String,
		confidence   String,
		sources      String,
		close        Nullable(Float64),
		rsi14        Nullable(Float64),
		chg_7d_pct   Nullable(Float64),
		chg_10d_pct  Nullable(Float64),
		chg_30d_pct  Nullable(Float64)
	) ENGINE = MergeTree()
	ORDER BY (run_started, symbol)`,
	`CREATE TABLE IF NOT EXISTS signalpull.run_diagnostics (
		run_started   DateTime,
		symbol        String,
		asset         String,
		provenance    String,
		guard_status  String,
		guard_reason  String,
		window_status String,
		levels        String,
		close         Nullable(Float64),
		rsi14         Nullable(Float64),
		chg_eff_pct   Nullable(Float64)
	) ENGINE = MergeTree()
	ORDER BY (run_started, symbol)`,
}

func (s *CHRunStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, schemaStatements)
}

func (s *CHRunStore) SaveRun(ctx context.Context, res *models.RunResult) error {
	if err := s.insertSignals(ctx, res); err != nil {
		return fmt.Errorf("insert signals: %w", err)
	}
	if err := s.insertDiagnostics(ctx, res); err != nil {
		return fmt.Errorf("insert diagnostics: %w", err)
	}
	if s.l != nil {
		s.l.Info("run persisted",
			applogger.Int("signals", len(res.Signals)),
			applogger.Int("diagnostics", len(res.Diagnostics)))
	}
	return nil
}

func (s *CHRunStore) insertSignals(ctx context.Context, res *models.RunResult) error {
	if len(res.Signals) == 0 {
		return nil
	}
	values := make([]string, 0, len(res.Signals))
	args := make([]interface{}, 0, len(res.Signals)*12)
	for _, sig := range res.Signals {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			res.StartedAt,
			sig.Symbol,
			string(sig.AssetType),
			sig.WindowUsed,
			joinLevels(sig.Levels),
			string(sig.Confidence),
			strings.Join(sig.Sources, "|"),
			sig.Indicators.Close,
			sig.Indicators.RSI14,
			sig.Changes.Chg7d,
			sig.Changes.Chg10d,
			sig.Changes.Chg30d,
		)
	}
	q := "INSERT INTO signalpull.signals (run_started, symbol, asset, window_used, levels, confidence, sources, close, rsi14, chg_7d_pct, chg_10d_pct, chg_30d_pct) VALUES " +
		strings.Join(values, ",")
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *CHRunStore) insertDiagnostics(ctx context.Context, res *models.RunResult) error {
	if len(res.Diagnostics) == 0 {
		return nil
	}
	// Chunked multi-row VALUES keeps round-trips low on large universes.
	const chunkSize = 1000
	for start := 0; start < len(res.Diagnostics); start += chunkSize {
		end := start + chunkSize
		if end > len(res.Diagnostics) {
			end = len(res.Diagnostics)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, d := range res.Diagnostics[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				res.StartedAt,
				d.Symbol,
				string(d.AssetType),
				d.Provenance,
				string(d.GuardStatus),
				d.GuardReason,
				string(d.WindowStatus),
				joinLevels(d.Levels),
				d.Indicators.Close,
				d.Indicators.RSI14,
				d.Changes.Effective(),
			)
		}
		q := "INSERT INTO signalpull.run_diagnostics (run_started, symbol, asset, provenance, guard_status, guard_reason, window_status, levels, close, rsi14, chg_eff_pct) VALUES " +
			strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CHRunStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHRunStore) Close() error {
	return s.client.Close()
}

func joinLevels(levels []models.LevelTag) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}
