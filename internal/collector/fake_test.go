package collector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// fakeSource serves canned series per symbol
type fakeSource struct {
	universe    []contracts.Stock
	universeErr error

	keyMetrics    map[string]contracts.StatementSeries
	income        map[string]contracts.StatementSeries
	incomeAnnual  map[string]contracts.StatementSeries
	incomeQuarter map[string]contracts.StatementSeries
	balance       map[string]contracts.StatementSeries
	cashFlow      map[string]contracts.StatementSeries
	ratios        map[string]contracts.StatementSeries
	prices        map[string]contracts.StatementSeries

	failing map[string]bool
	delay   map[string]time.Duration

	quotes    map[string]contracts.Quote
	quotesErr error

	calls       int64
	inFlight    int64
	maxInFlight int64

	mu        sync.Mutex
	requested []string
}

func newFakeSource(symbols ...string) *fakeSource {
	f := &fakeSource{
		keyMetrics:    map[string]contracts.StatementSeries{},
		income:        map[string]contracts.StatementSeries{},
		incomeAnnual:  map[string]contracts.StatementSeries{},
		incomeQuarter: map[string]contracts.StatementSeries{},
		balance:       map[string]contracts.StatementSeries{},
		cashFlow:      map[string]contracts.StatementSeries{},
		ratios:        map[string]contracts.StatementSeries{},
		prices:        map[string]contracts.StatementSeries{},
		failing:       map[string]bool{},
		delay:         map[string]time.Duration{},
		quotes:        map[string]contracts.Quote{},
	}
	for _, s := range symbols {
		f.universe = append(f.universe, contracts.Stock{Symbol: s, Name: s + " Ltd"})
	}
	return f
}

func (f *fakeSource) serve(ctx context.Context, op, symbol string, data map[string]contracts.StatementSeries) (contracts.StatementSeries, error) {
	atomic.AddInt64(&f.calls, 1)
	n := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt64(&f.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt64(&f.maxInFlight, peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.requested = append(f.requested, symbol)
	f.mu.Unlock()

	if d := f.delay[symbol]; d > 0 {
		select {
		case <-ctx.Done():
			return nil, &contracts.DataSourceError{Op: op, Symbol: symbol, Err: ctx.Err()}
		case <-time.After(d):
		}
	}

	if f.failing[symbol] {
		return nil, &contracts.DataSourceError{Op: op, Symbol: symbol, Message: "Limit Reach"}
	}
	return data[symbol], nil
}

func (f *fakeSource) Symbols(ctx context.Context) ([]contracts.Stock, error) {
	return f.universe, f.universeErr
}

func (f *fakeSource) KeyMetrics(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return f.serve(ctx, "key-metrics", symbol, f.keyMetrics)
}

func (f *fakeSource) IncomeStatement(ctx context.Context, symbol, period string, limit int) (contracts.StatementSeries, error) {
	switch period {
	case contracts.PeriodAnnual:
		return f.serve(ctx, "income-statement", symbol, f.incomeAnnual)
	case contracts.PeriodQuarterly:
		return f.serve(ctx, "income-statement", symbol, f.incomeQuarter)
	default:
		return f.serve(ctx, "income-statement", symbol, f.income)
	}
}

func (f *fakeSource) BalanceSheet(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return f.serve(ctx, "balance-sheet-statement", symbol, f.balance)
}

func (f *fakeSource) CashFlow(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return f.serve(ctx, "cash-flow-statement", symbol, f.cashFlow)
}

func (f *fakeSource) Ratios(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return f.serve(ctx, "ratios", symbol, f.ratios)
}

func (f *fakeSource) HistoricalPrices(ctx context.Context, symbol string, days int) (contracts.StatementSeries, error) {
	return f.serve(ctx, "historical-price-full", symbol, f.prices)
}

func (f *fakeSource) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	out := make(map[string]contracts.Quote)
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func (f *fakeSource) requestedSymbols() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, s := range f.requested {
		out[s] = true
	}
	return out
}

// memoryStore keeps saved reports in memory
type memoryStore struct {
	mu    sync.Mutex
	saved map[contracts.ScreenerID]*contracts.Report
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: map[contracts.ScreenerID]*contracts.Report{}}
}

func (m *memoryStore) Save(ctx context.Context, r *contracts.Report) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[r.Screener] = r
	return nil
}

func (m *memoryStore) Latest(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[id], nil
}

// fixtures

func goodValueRatios(pe float64) contracts.StatementSeries {
	return contracts.StatementSeries{{
		"priceEarningsRatio": pe,
		"priceToBookRatio":   1.2,
		"currentRatio":       2.5,
		"debtEquityRatio":    0.3,
		"netProfitMargin":    0.1,
	}}
}

func eps(values ...float64) contracts.StatementSeries {
	s := make(contracts.StatementSeries, len(values))
	for i, v := range values {
		s[i] = contracts.Period{"eps": v}
	}
	return s
}

func (f *fakeSource) withCanslimWinner(symbol string) {
	f.incomeQuarter[symbol] = eps(2.0, 1.9, 1.8, 1.6, 1.5)
	f.incomeAnnual[symbol] = eps(4.0, 3.0, 2.0, 1.5, 1.0)
	f.prices[symbol] = contracts.StatementSeries{
		{"close": 95, "high": 96},
		{"close": 98, "high": 100},
	}
}

func (f *fakeSource) withPiotroski(symbol string, strong bool) {
	f.income[symbol] = contracts.StatementSeries{{"netIncome": 10}, {"netIncome": 5}}
	f.cashFlow[symbol] = contracts.StatementSeries{{"operatingCashFlow": 20}, {}}
	f.balance[symbol] = contracts.StatementSeries{
		{"longTermDebt": 10, "totalAssets": 100, "commonStock": 50},
		{"longTermDebt": 20, "totalAssets": 100, "commonStock": 60},
	}
	if strong {
		f.ratios[symbol] = contracts.StatementSeries{
			{"returnOnAssets": 0.1, "currentRatio": 2, "grossProfitMargin": 0.5, "assetTurnover": 1.1},
			{"returnOnAssets": 0.05, "currentRatio": 1, "grossProfitMargin": 0.4, "assetTurnover": 1.0},
		}
		return
	}
	f.ratios[symbol] = contracts.StatementSeries{{}, {"returnOnAssets": 1, "currentRatio": 9, "grossProfitMargin": 1, "assetTurnover": 9}}
}
