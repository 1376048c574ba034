package commands

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/collector"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/external/fmp"
	"github.com/wonny/screener/internal/metrics"
	"github.com/wonny/screener/internal/screenconfig"
	"github.com/wonny/screener/internal/snapshot"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// app bundles the wired dependencies shared by every command
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Registry
	screens   *screenconfig.Config
	source    *fmp.Client
	store     contracts.SnapshotStore
	collector *collector.Collector

	closers []func()
}

// newApp loads configuration and wires the data source, snapshot store and collector
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// 3. Screener thresholds
	path := cfg.Scan.ScreenerConfig
	if screenerConfig != "" {
		path = screenerConfig
	}
	screens, _, err := screenconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load screener config: %w", err)
	}
	a.screens = screens

	// 4. Metrics
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 5. HTTP client (+ shared redis rate limit)
	httpClient := httputil.New(cfg.FMP.Timeout, log)
	if cfg.FMP.MaxRetries > 0 {
		httpClient.WithRetry(cfg.FMP.MaxRetries, httputil.DefaultRetryDelay)
	}

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	if rdb.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "screener"), redis.FMPRateLimit)
		log.Info("Shared FMP rate limit enabled")
	}

	// 6. Data source
	a.source = fmp.NewClient(httpClient, cfg.FMP, a.metrics, log)

	// 7. Snapshot store
	store, closeStore, err := snapshot.Open(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	// 8. Collector
	col, err := collector.New(a.source, store, screens, collector.Config{Workers: cfg.Scan.Concurrency}, a.metrics, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create collector: %w", err)
	}
	a.collector = col

	log.WithFields(map[string]interface{}{
		"backend":     cfg.Snapshot.Backend,
		"concurrency": cfg.Scan.Concurrency,
		"screens":     screens.Meta.Version,
	}).Debug("Application wired")

	return a, nil
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
