package repository

import (
	"context"
	"time"

	"SignalPull/internal/domain/models"
)

// VendorSource fetches a daily close series for one canonical symbol.
// Implementations absorb transport failures and return an empty RawSeries;
// the guard treats that as vendor-unavailable.
type VendorSource interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, bars int) models.RawSeries
}

// DerivativesSource fetches crypto funding rate and open interest.
type DerivativesSource interface {
	Fetch(ctx context.Context, symbol string) (models.DerivativeReading, error)
}

// SnapshotStore keeps per-run derivative readings so later runs can compute
// the 3-day open-interest change without hidden cross-run state.
type SnapshotStore interface {
	Save(ctx context.Context, day time.Time, readings []models.DerivativeReading) error
	LoadBefore(ctx context.Context, day time.Time, maxAgeDays int) (map[string]models.DerivativeReading, error)
}

// RunStore persists run output for the API and for run history.
type RunStore interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, res *models.RunResult) error
	Health(ctx context.Context) error
	Close() error
}

// ActionPublisher pushes the ranked action list downstream.
type ActionPublisher interface {
	PublishActions(ctx context.Context, actions []models.RankedAction) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordRun(outcome string, seconds float64)
	RecordGuardOutcome(asset, status, reason string)
	RecordSignal(level string)
	RecordVendorFetch(vendor string, ok bool, seconds float64)
}
