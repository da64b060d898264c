package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"SignalPull/internal/domain/models"
	domrepo "SignalPull/internal/domain/repository"
	"SignalPull/internal/services/indicators"
	"SignalPull/internal/services/priceguard"
	"SignalPull/pkg/logger"
)

// fullIndicatorBars is the shortest series that supports the complete
// indicator set; anything below runs in the Lite window.
const fullIndicatorBars = 15

// oiLookbackDays is the snapshot age used for the open-interest change.
const oiLookbackDays = 3

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Instrument is one universe entry.
type Instrument struct {
	Symbol string
	Asset  models.AssetType
}

// PipelineDeps wires the pipeline to its boundary collaborators. Vendor
// sources are per asset class; the secondary source may be nil, which the
// guard handles as vendor-unavailable.
type PipelineDeps struct {
	Log   *logger.Logger
	Guard *priceguard.Guard

	EquityPrimary   domrepo.VendorSource
	EquitySecondary domrepo.VendorSource
	CryptoPrimary   domrepo.VendorSource
	CryptoSecondary domrepo.VendorSource

	Derivatives domrepo.DerivativesSource
	Snapshots   domrepo.SnapshotStore
	Store       domrepo.RunStore
	Publisher   domrepo.ActionPublisher
	Metrics     domrepo.Metrics
}

// Pipeline runs the full reconcile-classify-publish cycle over the universe.
// Instruments are independent, so the run fans out per instrument with a
// bounded worker count; one instrument failing only removes that instrument
// from the run.
type Pipeline struct {
	deps     PipelineDeps
	universe []Instrument
	bars     int
	parallel int

	mu      sync.Mutex
	running bool
	lastRun *models.RunResult
}

func NewPipeline(deps PipelineDeps, universe []Instrument, bars, parallel int) *Pipeline {
	if bars <= 0 {
		bars = 60
	}
	if parallel <= 0 {
		parallel = 8
	}
	return &Pipeline{deps: deps, universe: universe, bars: bars, parallel: parallel}
}

// EvaluationInput is everything needed to evaluate one instrument; it carries
// no clock or hidden state, so evaluation is idempotent per run.
type EvaluationInput struct {
	Symbol      string
	Asset       models.AssetType
	Primary     models.RawSeries
	Secondary   models.RawSeries
	Derivatives models.Derivatives
}

// EvaluateInstrument reconciles the vendor series, computes indicators and
// changes, classifies, and decides emission. The Diagnostic is produced for
// every instrument; the Signal only for accepted, actionable, gate-passing
// ones.
func EvaluateInstrument(guard *priceguard.Guard, in EvaluationInput) (models.Diagnostic, *models.Signal) {
	acc := guard.Accept(in.Asset, in.Primary, in.Secondary)

	diag := models.Diagnostic{
		Symbol:      in.Symbol,
		AssetType:   in.Asset,
		Provenance:  acc.Provenance,
		GuardStatus: acc.Status,
		GuardReason: acc.Reason,
		Sources:     acc.Sources,
	}
	if !acc.Accepted() {
		return diag, nil
	}

	closes := acc.Series.Closes()
	window := models.WindowTarget
	if len(closes) < fullIndicatorBars {
		window = models.WindowShort
	}

	ind := indicators.Compute(closes)
	chg := ComputeChanges(closes)
	levels := Classify(ClassifyInput{
		Asset:       in.Asset,
		GuardStatus: acc.Status,
		Window:      window,
		Changes:     chg,
		Indicators:  ind,
		Derivatives: in.Derivatives,
	})

	diag.WindowStatus = window
	diag.Indicators = ind
	diag.Changes = chg
	diag.Levels = levels
	if in.Asset == models.AssetCrypto {
		d := in.Derivatives
		diag.Derivatives = &d
	}

	if !Actionable(levels) || !EmitGate(in.Asset, len(acc.Sources)) {
		return diag, nil
	}

	sig := &models.Signal{
		Symbol:     in.Symbol,
		AssetType:  in.Asset,
		WindowUsed: windowUsed(chg),
		Indicators: ind,
		Changes:    chg,
		Levels:     levels,
		Confidence: DeriveConfidence(levels, len(acc.Sources)),
		Sources:    acc.Sources,
	}
	if in.Asset == models.AssetCrypto {
		d := in.Derivatives
		sig.Derivatives = &d
	}
	return diag, sig
}

func windowUsed(chg models.ChangeSet) string {
	switch {
	case chg.Chg7d != nil:
		return "7d"
	case chg.Chg10d != nil:
		return "10d"
	case chg.Chg30d != nil:
		return "30d"
	}
	return ""
}

// Run executes one full pipeline cycle. Only one run may be active at a time;
// a second caller gets ErrRunInProgress instead of queueing.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrRunInProgress
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	started := time.Now().UTC()
	today := started.Truncate(24 * time.Hour)

	prior := p.loadPriorSnapshot(ctx, today)

	var (
		outMu    sync.Mutex
		diags    []models.Diagnostic
		signals  []models.Signal
		readings []models.DerivativeReading
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallel)
	for _, inst := range p.universe {
		g.Go(func() error {
			in, reading := p.gather(gctx, inst, prior)

			diag, sig := EvaluateInstrument(p.deps.Guard, in)
			p.deps.Metrics.RecordGuardOutcome(string(inst.Asset), string(diag.GuardStatus), diag.GuardReason)

			outMu.Lock()
			diags = append(diags, diag)
			if sig != nil {
				signals = append(signals, *sig)
				for _, l := range sig.Levels {
					p.deps.Metrics.RecordSignal(string(l))
				}
			}
			if reading != nil {
				readings = append(readings, *reading)
			}
			outMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.deps.Metrics.RecordRun("error", time.Since(started).Seconds())
		return nil, err
	}

	sort.Slice(diags, func(i, j int) bool { return diags[i].Symbol < diags[j].Symbol })
	sort.Slice(signals, func(i, j int) bool { return signals[i].Symbol < signals[j].Symbol })

	res := &models.RunResult{
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Signals:     signals,
		Actions:     RankActions(signals),
		Diagnostics: diags,
	}

	p.persist(ctx, today, res, readings)

	p.mu.Lock()
	p.lastRun = res
	p.mu.Unlock()

	p.deps.Metrics.RecordRun("ok", time.Since(started).Seconds())
	p.deps.Log.Info("pipeline run finished",
		logger.Int("instruments", len(p.universe)),
		logger.Int("signals", len(signals)),
		logger.Int("actions", len(res.Actions)),
		logger.Duration("elapsed", time.Since(started)))
	return res, nil
}

// gather fetches both vendor series and, for crypto, the derivative metrics.
// The returned reading is this run's raw observation for the snapshot store.
func (p *Pipeline) gather(ctx context.Context, inst Instrument, prior map[string]models.DerivativeReading) (EvaluationInput, *models.DerivativeReading) {
	in := EvaluationInput{Symbol: inst.Symbol, Asset: inst.Asset}

	primary, secondary := p.deps.EquityPrimary, p.deps.EquitySecondary
	if inst.Asset == models.AssetCrypto {
		primary, secondary = p.deps.CryptoPrimary, p.deps.CryptoSecondary
	}
	in.Primary = p.fetch(ctx, primary, inst.Symbol)
	in.Secondary = p.fetch(ctx, secondary, inst.Symbol)

	if inst.Asset != models.AssetCrypto || p.deps.Derivatives == nil {
		return in, nil
	}
	reading, err := p.deps.Derivatives.Fetch(ctx, inst.Symbol)
	if err != nil {
		p.deps.Log.Warn("derivatives fetch failed",
			logger.String("symbol", inst.Symbol), logger.Error(err))
		return in, nil
	}
	in.Derivatives = deriveMetrics(reading, prior)
	return in, &reading
}

func (p *Pipeline) fetch(ctx context.Context, src domrepo.VendorSource, symbol string) models.RawSeries {
	if src == nil {
		return models.RawSeries{}
	}
	start := time.Now()
	raw := src.FetchDaily(ctx, symbol, p.bars)
	p.deps.Metrics.RecordVendorFetch(src.Name(), !raw.Empty(), time.Since(start).Seconds())
	return raw
}

// deriveMetrics turns the current reading plus the prior snapshot into the
// classifier's derivative inputs. Without a usable prior open interest the
// change stays nil and the confirming tier simply cannot fire.
func deriveMetrics(cur models.DerivativeReading, prior map[string]models.DerivativeReading) models.Derivatives {
	d := models.Derivatives{Funding: &cur.Funding}
	if old, ok := prior[cur.Symbol]; ok && old.OpenInterest > 0 {
		chg := (cur.OpenInterest/old.OpenInterest - 1) * 100
		d.OIChg3dPct = &chg
	}
	return d
}

func (p *Pipeline) loadPriorSnapshot(ctx context.Context, today time.Time) map[string]models.DerivativeReading {
	if p.deps.Snapshots == nil {
		return nil
	}
	prior, err := p.deps.Snapshots.LoadBefore(ctx, today.AddDate(0, 0, -oiLookbackDays), 2)
	if err != nil {
		p.deps.Log.Warn("prior derivative snapshot unavailable", logger.Error(err))
		return nil
	}
	return prior
}

// persist saves the snapshot, the run record and the downstream publication.
// Each sink failing is logged and skipped; the run result itself survives.
func (p *Pipeline) persist(ctx context.Context, today time.Time, res *models.RunResult, readings []models.DerivativeReading) {
	if p.deps.Snapshots != nil && len(readings) > 0 {
		if err := p.deps.Snapshots.Save(ctx, today, readings); err != nil {
			p.deps.Log.Error("snapshot save failed", logger.Error(err))
		}
	}
	if p.deps.Store != nil {
		if err := p.deps.Store.SaveRun(ctx, res); err != nil {
			p.deps.Log.Error("run persist failed", logger.Error(err))
		}
	}
	if p.deps.Publisher != nil && len(res.Actions) > 0 {
		if err := p.deps.Publisher.PublishActions(ctx, res.Actions); err != nil {
			p.deps.Log.Error("action publish failed", logger.Error(err))
		}
	}
}

// LastRun returns the most recent completed run, or nil before the first one.
func (p *Pipeline) LastRun() *models.RunResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun
}
