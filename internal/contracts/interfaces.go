package contracts

import "context"

// Statement period selectors
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarter"
)

// DataSource fetches fundamentals and prices for one symbol at a time.
// Every failure is a *DataSourceError.
// ⭐ SSOT: 외부 재무 데이터 인터페이스
type DataSource interface {
	Symbols(ctx context.Context) ([]Stock, error)
	KeyMetrics(ctx context.Context, symbol string, limit int) (StatementSeries, error)
	IncomeStatement(ctx context.Context, symbol, period string, limit int) (StatementSeries, error)
	BalanceSheet(ctx context.Context, symbol string, limit int) (StatementSeries, error)
	CashFlow(ctx context.Context, symbol string, limit int) (StatementSeries, error)
	Ratios(ctx context.Context, symbol string, limit int) (StatementSeries, error)
	HistoricalPrices(ctx context.Context, symbol string, days int) (StatementSeries, error)
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// SnapshotStore persists the latest report per screener
// ⭐ SSOT: 결과 스냅샷 저장 인터페이스
type SnapshotStore interface {
	Save(ctx context.Context, report *Report) error
	// Latest returns (nil, nil) when nothing was saved yet
	Latest(ctx context.Context, id ScreenerID) (*Report, error)
}
