package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/metrics"
	"github.com/wonny/screener/internal/screenconfig"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/pkg/logger"
)

// Collector assembles per-screener data pools and runs the engines
// ⭐ SSOT: 배치 오케스트레이션은 이 패키지에서만
type Collector struct {
	source     contracts.DataSource
	store      contracts.SnapshotStore
	screens    *screenconfig.Config
	configHash string
	cfg        Config
	metrics    *metrics.Registry
	logger     *logger.Logger
	now        func() time.Time

	magicFormula *selection.MagicFormula
	piotroski    *selection.Piotroski
	valueScan    *selection.ValueScan
	canslim      *selection.Canslim
}

// Config holds collector configuration
type Config struct {
	Workers int // symbols in flight per batch
}

// New creates a Collector. store and m may be nil.
func New(
	source contracts.DataSource,
	store contracts.SnapshotStore,
	screens *screenconfig.Config,
	cfg Config,
	m *metrics.Registry,
	log *logger.Logger,
) (*Collector, error) {
	if screens == nil {
		screens = screenconfig.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	hash, err := screenconfig.Hash(screens)
	if err != nil {
		return nil, fmt.Errorf("hash screener config: %w", err)
	}

	return &Collector{
		source:       source,
		store:        store,
		screens:      screens,
		configHash:   hash,
		cfg:          cfg,
		metrics:      m,
		logger:       log.Module("collector"),
		now:          time.Now,
		magicFormula: selection.NewMagicFormula(),
		piotroski:    selection.NewPiotroski(screens.Piotroski),
		valueScan:    selection.NewValueScan(screens.ValueScan),
		canslim:      selection.NewCanslim(screens.Canslim),
	}, nil
}

// Universe lists the symbol universe. Failure or an empty listing wraps ErrNoUniverse.
func (c *Collector) Universe(ctx context.Context) ([]contracts.Stock, error) {
	stocks, err := c.source.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrNoUniverse, err)
	}
	if len(stocks) == 0 {
		return nil, fmt.Errorf("%w: empty listing", contracts.ErrNoUniverse)
	}
	return stocks, nil
}

// Run fetches the universe and runs one screener at its configured batch
func (c *Collector) Run(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	universe, err := c.Universe(ctx)
	if err != nil {
		return nil, err
	}
	return c.RunWith(ctx, id, universe, c.screens.Batches.For(id))
}

// RunWith runs one screener over a prefix of universe.
// Only context cancellation aborts the batch; symbol failures are dropped.
func (c *Collector) RunWith(ctx context.Context, id contracts.ScreenerID, universe []contracts.Stock, batch screenconfig.Batch) (*contracts.Report, error) {
	if len(universe) > batch.Size {
		universe = universe[:batch.Size]
	}

	report := &contracts.Report{
		Screener:    id,
		RunID:       uuid.NewString(),
		GeneratedAt: c.now().UTC(),
		ConfigHash:  c.configHash,
	}

	log := c.logger.WithFields(map[string]interface{}{
		"screener": string(id),
		"run_id":   report.RunID,
		"symbols":  len(universe),
		"workers":  c.cfg.Workers,
		"delay":    batch.Delay.String(),
	})
	log.Info("Starting batch")

	var stats contracts.BatchStats
	var err error
	switch id {
	case contracts.MagicFormula:
		var pool []contracts.MagicFormulaInput
		pool, stats, err = assemble(ctx, c, id, universe, batch, c.fetchMagicFormula)
		report.MagicFormula = c.magicFormula.Rank(pool)
	case contracts.Piotroski:
		var pool []contracts.PiotroskiScore
		pool, stats, err = assemble(ctx, c, id, universe, batch, c.fetchPiotroski)
		report.Piotroski = c.piotroski.Select(pool)
	case contracts.ValueScan:
		var pool []contracts.ValueInput
		pool, stats, err = assemble(ctx, c, id, universe, batch, c.fetchValueScan)
		report.Value = c.valueScan.Filter(pool)
	case contracts.Canslim:
		var pool []contracts.CanslimInput
		pool, stats, err = assemble(ctx, c, id, universe, batch, c.fetchCanslim)
		report.Canslim = c.canslim.Screen(pool)
	default:
		return nil, &contracts.ValidationError{Field: "screener", Reason: fmt.Sprintf("unknown screener %q", id)}
	}
	if err != nil {
		log.WithError(err).Warn("Batch aborted")
		return nil, err
	}

	report.Stats = stats
	report.Finalize()
	c.metrics.ObserveRun(string(id), string(report.Outcome), report.Len(), stats.Duration)

	log.WithFields(map[string]interface{}{
		"pooled":   stats.Requested - dropped(stats),
		"results":  report.Len(),
		"outcome":  report.Outcome,
		"dropped":  stats.Dropped,
		"duration": stats.Duration.String(),
	}).Info("Batch completed")

	return report, nil
}

// RunDaily performs the daily analysis: one universe fetch, Magic Formula,
// Value Scan and Piotroski at the daily batch size, live quotes for every
// found symbol, then one snapshot per screener.
func (c *Collector) RunDaily(ctx context.Context) ([]*contracts.Report, error) {
	universe, err := c.Universe(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.WithField("universe", len(universe)).Info("Starting daily analysis")

	daily := c.screens.Batches.Daily
	reports := make([]*contracts.Report, 0, 3)
	for _, id := range []contracts.ScreenerID{contracts.MagicFormula, contracts.ValueScan, contracts.Piotroski} {
		report, err := c.RunWith(ctx, id, universe, daily)
		if err != nil {
			return nil, fmt.Errorf("daily %s: %w", id, err)
		}
		reports = append(reports, report)
	}

	c.AttachQuotes(ctx, reports...)

	for _, r := range reports {
		if err := c.Persist(ctx, r); err != nil {
			return reports, err
		}
	}

	c.logger.Info("Daily analysis finished")
	return reports, nil
}

// Refresh runs one screener, attaches quotes and persists the snapshot
func (c *Collector) Refresh(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	report, err := c.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	c.AttachQuotes(ctx, report)
	if err := c.Persist(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// AttachQuotes fetches live quotes for the union of result symbols.
// A quote failure is logged and never fails the reports.
func (c *Collector) AttachQuotes(ctx context.Context, reports ...*contracts.Report) {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)
	for _, r := range reports {
		for _, s := range r.Symbols() {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return
	}

	quotes, err := c.source.Quotes(ctx, symbols)
	if err != nil {
		c.logger.WithError(err).WithField("symbols", len(symbols)).Warn("Live quotes unavailable")
		return
	}

	for _, r := range reports {
		r.Quotes = make(map[string]contracts.Quote)
		for _, s := range r.Symbols() {
			if q, ok := quotes[s]; ok {
				r.Quotes[s] = q
			}
		}
	}

	c.logger.WithField("quotes", len(quotes)).Info("Live quotes attached")
}

// Persist saves the report capped at the configured top N
func (c *Collector) Persist(ctx context.Context, report *contracts.Report) error {
	if c.store == nil {
		return nil
	}
	top := report.Top(c.screens.Snapshot.TopN)
	if err := c.store.Save(ctx, top); err != nil {
		return fmt.Errorf("save %s snapshot: %w", report.Screener, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"screener": string(report.Screener),
		"results":  report.Len(),
		"saved":    top.Len(),
	}).Info("Snapshot saved")
	return nil
}

// Screens returns the active screener configuration
func (c *Collector) Screens() *screenconfig.Config {
	return c.screens
}

func dropped(stats contracts.BatchStats) int {
	n := 0
	for _, v := range stats.Dropped {
		n += v
	}
	return n
}

// IsBatchFailure reports whether err aborted a whole batch
func IsBatchFailure(err error) bool {
	return errors.Is(err, contracts.ErrNoUniverse) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
