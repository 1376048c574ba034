package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/metrics"
	"github.com/wonny/screener/internal/screenconfig"
	"github.com/wonny/screener/pkg/logger"
)

// fastScreens removes pacing so tests run quickly
func fastScreens() *screenconfig.Config {
	cfg := screenconfig.Default()
	for _, b := range []*screenconfig.Batch{
		&cfg.Batches.MagicFormula, &cfg.Batches.Piotroski, &cfg.Batches.ValueScan,
		&cfg.Batches.Canslim, &cfg.Batches.Daily,
	} {
		b.Delay = 0
	}
	return cfg
}

func newTestCollector(t *testing.T, src contracts.DataSource, store contracts.SnapshotStore, screens *screenconfig.Config, workers int) *Collector {
	t.Helper()
	c, err := New(src, store, screens, Config{Workers: workers}, nil, logger.Nop())
	require.NoError(t, err)
	return c
}

func symbolsOf(r *contracts.Report) []string {
	return r.Symbols()
}

func TestRun_MagicFormula(t *testing.T) {
	src := newFakeSource("A", "B", "FAIL", "EMPTY")
	src.keyMetrics["A"] = contracts.StatementSeries{{"enterpriseValue": 1000}}
	src.income["A"] = contracts.StatementSeries{{"ebitda": 120, "depreciationAndAmortization": 20}}
	src.balance["A"] = contracts.StatementSeries{{"totalCurrentAssets": 500, "totalCurrentLiabilities": 200, "propertyPlantEquipmentNet": 200}}

	src.keyMetrics["B"] = contracts.StatementSeries{{"enterpriseValue": 200}}
	src.income["B"] = contracts.StatementSeries{{"ebitda": 50}}
	src.balance["B"] = contracts.StatementSeries{{"totalCurrentAssets": 100, "propertyPlantEquipmentNet": 100}}

	src.failing["FAIL"] = true
	src.keyMetrics["EMPTY"] = contracts.StatementSeries{{"enterpriseValue": 1}}
	src.income["EMPTY"] = contracts.StatementSeries{{"ebitda": 1}}

	m := metrics.New()
	c, err := New(src, nil, fastScreens(), Config{Workers: 2}, m, logger.Nop())
	require.NoError(t, err)

	report, err := c.Run(context.Background(), contracts.MagicFormula)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, symbolsOf(report))
	assert.Equal(t, 2, report.MagicFormula[0].CombinedRank)
	assert.Equal(t, 4, report.MagicFormula[1].CombinedRank)
	assert.Equal(t, 100.0, report.MagicFormula[1].EBIT)
	assert.Equal(t, 300.0, report.MagicFormula[1].WorkingCapital)
	assert.Equal(t, "B Ltd", report.MagicFormula[0].Name)

	assert.Equal(t, contracts.OutcomeOK, report.Outcome)
	assert.Equal(t, 4, report.Stats.Requested)
	assert.Equal(t, 2, report.Stats.Kept)
	assert.Equal(t, map[string]int{"data_source": 1, "insufficient_data": 1}, report.Stats.Dropped)
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.ConfigHash, 64)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchSymbols.WithLabelValues("magic_formula", "kept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchRuns.WithLabelValues("magic_formula", "ok")))
}

func TestRun_Piotroski(t *testing.T) {
	src := newFakeSource("WEAK", "STRONG", "SHORT")
	src.withPiotroski("WEAK", false)
	src.withPiotroski("STRONG", true)
	src.withPiotroski("SHORT", true)
	src.balance["SHORT"] = src.balance["SHORT"][:1]

	report, err := newTestCollector(t, src, nil, fastScreens(), 3).Run(context.Background(), contracts.Piotroski)
	require.NoError(t, err)

	require.Len(t, report.Piotroski, 1)
	assert.Equal(t, "STRONG", report.Piotroski[0].Symbol)
	assert.Equal(t, 9, report.Piotroski[0].FScore)
	assert.Equal(t, map[string]int{"insufficient_data": 1}, report.Stats.Dropped)
}

func TestRun_ValueScanNoResults(t *testing.T) {
	src := newFakeSource("X", "Y")
	src.ratios["X"] = goodValueRatios(40)
	src.ratios["Y"] = contracts.StatementSeries{}

	report, err := newTestCollector(t, src, nil, fastScreens(), 2).Run(context.Background(), contracts.ValueScan)
	require.NoError(t, err)

	assert.Equal(t, contracts.OutcomeNoResults, report.Outcome)
	assert.Equal(t, 0, report.Len())
	assert.Nil(t, report.Stats.Dropped, "threshold failures are not drops")
}

func TestRun_TruncatesToBatchSize(t *testing.T) {
	src := newFakeSource("A", "B", "C", "D", "E")
	for _, s := range []string{"A", "B", "C", "D", "E"} {
		src.ratios[s] = goodValueRatios(10)
	}

	screens := fastScreens()
	screens.Batches.ValueScan.Size = 2

	report, err := newTestCollector(t, src, nil, screens, 4).Run(context.Background(), contracts.ValueScan)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Stats.Requested)
	assert.Equal(t, map[string]bool{"A": true, "B": true}, src.requestedSymbols())
}

func TestRun_PreservesUniverseOrder(t *testing.T) {
	symbols := []string{"S1", "S2", "S3", "S4"}
	src := newFakeSource(symbols...)
	for i, s := range symbols {
		src.withCanslimWinner(s)
		// earlier symbols finish later
		src.delay[s] = time.Duration(len(symbols)-i) * 10 * time.Millisecond
	}

	report, err := newTestCollector(t, src, nil, fastScreens(), 4).Run(context.Background(), contracts.Canslim)
	require.NoError(t, err)

	assert.Equal(t, symbols, symbolsOf(report))
	for _, s := range report.Canslim {
		assert.Equal(t, "C, A, N", s.Criteria)
		assert.Equal(t, 95.0, s.Price)
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	symbols := []string{"A", "B", "C", "D", "E", "F"}
	src := newFakeSource(symbols...)
	for _, s := range symbols {
		src.ratios[s] = goodValueRatios(10)
		src.delay[s] = 20 * time.Millisecond
	}

	_, err := newTestCollector(t, src, nil, fastScreens(), 2).Run(context.Background(), contracts.ValueScan)
	require.NoError(t, err)

	assert.LessOrEqual(t, atomic.LoadInt64(&src.maxInFlight), int64(2))
	assert.Equal(t, int64(6), atomic.LoadInt64(&src.calls))
}

func TestRun_PacesSymbolStarts(t *testing.T) {
	symbols := []string{"A", "B", "C", "D"}
	src := newFakeSource(symbols...)
	for _, s := range symbols {
		src.ratios[s] = goodValueRatios(10)
	}

	screens := fastScreens()
	screens.Batches.ValueScan.Delay = 30 * time.Millisecond

	start := time.Now()
	_, err := newTestCollector(t, src, nil, screens, 4).Run(context.Background(), contracts.ValueScan)
	require.NoError(t, err)

	// 첫 토큰은 즉시, 이후 3회 대기
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRun_Cancellation(t *testing.T) {
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	src := newFakeSource(symbols...)
	for _, s := range symbols {
		src.ratios[s] = goodValueRatios(10)
	}

	screens := fastScreens()
	screens.Batches.ValueScan.Delay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	report, err := newTestCollector(t, src, nil, screens, 2).Run(ctx, contracts.ValueScan)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, atomic.LoadInt64(&src.calls), int64(len(symbols)))
	assert.True(t, IsBatchFailure(err))
}

func TestRun_UniverseFailure(t *testing.T) {
	src := newFakeSource()
	src.universeErr = &contracts.DataSourceError{Op: "stock-screener", Message: "Invalid API KEY."}

	_, err := newTestCollector(t, src, nil, fastScreens(), 1).Run(context.Background(), contracts.Canslim)
	assert.ErrorIs(t, err, contracts.ErrNoUniverse)
	var dsErr *contracts.DataSourceError
	assert.ErrorAs(t, err, &dsErr)
	assert.True(t, IsBatchFailure(err))

	empty := newFakeSource()
	_, err = newTestCollector(t, empty, nil, fastScreens(), 1).Run(context.Background(), contracts.Canslim)
	assert.ErrorIs(t, err, contracts.ErrNoUniverse)
}

func TestRun_UnknownScreener(t *testing.T) {
	src := newFakeSource("A")
	_, err := newTestCollector(t, src, nil, fastScreens(), 1).Run(context.Background(), contracts.ScreenerID("momentum"))

	var ve *contracts.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.False(t, IsBatchFailure(err))
}

func TestRunDaily(t *testing.T) {
	src := newFakeSource("V1", "V2", "P1", "BAD")
	src.ratios["V1"] = goodValueRatios(8)
	src.ratios["V2"] = goodValueRatios(5)
	src.withPiotroski("P1", true)
	src.failing["BAD"] = true
	src.quotes["V1"] = contracts.Quote{Symbol: "V1", Price: 10, Change: 1, ChangesPercentage: 11.1}
	src.quotes["P1"] = contracts.Quote{Symbol: "P1", Price: 20}

	screens := fastScreens()
	screens.Snapshot.TopN = 1
	store := newMemoryStore()

	reports, err := newTestCollector(t, src, store, screens, 2).RunDaily(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, contracts.MagicFormula, reports[0].Screener)
	assert.Equal(t, contracts.OutcomeNoResults, reports[0].Outcome)

	value := reports[1]
	assert.Equal(t, []string{"V2", "V1"}, value.Symbols(), "full result kept in memory")
	assert.Contains(t, value.Quotes, "V1")

	saved, _ := store.Latest(context.Background(), contracts.ValueScan)
	require.NotNil(t, saved)
	assert.Equal(t, []string{"V2"}, saved.Symbols(), "snapshot capped at top N")
	assert.Empty(t, saved.Quotes)

	pio, _ := store.Latest(context.Background(), contracts.Piotroski)
	require.NotNil(t, pio)
	assert.Equal(t, []string{"P1"}, pio.Symbols())
	assert.Equal(t, 20.0, pio.Quotes["P1"].Price)

	mf, _ := store.Latest(context.Background(), contracts.MagicFormula)
	require.NotNil(t, mf)
	assert.Equal(t, contracts.OutcomeNoResults, mf.Outcome)
}

func TestAttachQuotes_FailureIsNotFatal(t *testing.T) {
	src := newFakeSource("V1")
	src.ratios["V1"] = goodValueRatios(8)
	src.quotesErr = &contracts.DataSourceError{Op: "quote", Message: "down"}

	store := newMemoryStore()
	report, err := newTestCollector(t, src, store, fastScreens(), 1).Refresh(context.Background(), contracts.ValueScan)
	require.NoError(t, err)

	assert.Equal(t, []string{"V1"}, report.Symbols())
	assert.Nil(t, report.Quotes)

	saved, _ := store.Latest(context.Background(), contracts.ValueScan)
	assert.NotNil(t, saved)
}

func TestRefresh_StoreFailure(t *testing.T) {
	src := newFakeSource("V1")
	src.ratios["V1"] = goodValueRatios(8)

	store := newMemoryStore()
	store.err = errors.New("disk full")

	report, err := newTestCollector(t, src, store, fastScreens(), 1).Refresh(context.Background(), contracts.ValueScan)
	assert.Error(t, err)
	assert.NotNil(t, report, "the computed report is still returned")
}
