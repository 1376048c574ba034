package contracts

// MissingRank substitutes a component rank that could not be assigned,
// so partially ranked stocks sort last.
const MissingRank = 9999

// ScoreResult is either a score or an error, never both
type ScoreResult struct {
	score int
	err   error
}

// OK wraps a successful score
func OK(score int) ScoreResult {
	return ScoreResult{score: score}
}

// Fail wraps a scoring error
func Fail(err error) ScoreResult {
	return ScoreResult{err: err}
}

// Unwrap returns the score or the error
func (r ScoreResult) Unwrap() (int, error) {
	return r.score, r.err
}

// IsOK reports whether the result carries a score
func (r ScoreResult) IsOK() bool {
	return r.err == nil
}

// MagicFormulaInput carries the raw fields for earnings yield and return on capital
type MagicFormulaInput struct {
	Stock
	EnterpriseValue float64 `json:"enterprise_value"`
	EBIT            float64 `json:"ebit"`
	NetFixedAssets  float64 `json:"net_fixed_assets"`
	WorkingCapital  float64 `json:"working_capital"`
}

// Capital is net fixed assets plus working capital
func (in MagicFormulaInput) Capital() float64 {
	return in.NetFixedAssets + in.WorkingCapital
}

// RankedStock is a Magic Formula result (1 = best)
type RankedStock struct {
	MagicFormulaInput
	EarningsYield   float64 `json:"earnings_yield"`
	ReturnOnCapital float64 `json:"return_on_capital"`
	EYRank          int     `json:"ey_rank"`
	ROCRank         int     `json:"roc_rank"`
	CombinedRank    int     `json:"combined_rank"`
}

// PiotroskiInput carries the four statement series, each needing two periods
type PiotroskiInput struct {
	Stock
	Income   StatementSeries
	Balance  StatementSeries
	CashFlow StatementSeries
	Ratios   StatementSeries
}

// PiotroskiCriteria records which of the nine tests passed
type PiotroskiCriteria struct {
	PositiveNetIncome     bool `json:"positive_net_income"`
	PositiveOperatingCash bool `json:"positive_operating_cash"`
	RisingROA             bool `json:"rising_roa"`
	CashExceedsIncome     bool `json:"cash_exceeds_income"`
	FallingLeverage       bool `json:"falling_leverage"`
	RisingCurrentRatio    bool `json:"rising_current_ratio"`
	NoDilution            bool `json:"no_dilution"`
	RisingGrossMargin     bool `json:"rising_gross_margin"`
	RisingAssetTurnover   bool `json:"rising_asset_turnover"`
}

// Count returns the number of passed tests
func (c PiotroskiCriteria) Count() int {
	n := 0
	for _, ok := range []bool{
		c.PositiveNetIncome, c.PositiveOperatingCash, c.RisingROA,
		c.CashExceedsIncome, c.FallingLeverage, c.RisingCurrentRatio,
		c.NoDilution, c.RisingGrossMargin, c.RisingAssetTurnover,
	} {
		if ok {
			n++
		}
	}
	return n
}

// PiotroskiScore is a Piotroski result
type PiotroskiScore struct {
	Stock
	FScore   int               `json:"score"`
	Criteria PiotroskiCriteria `json:"criteria"`
}

// ValueInput carries the most recent ratio snapshot
type ValueInput struct {
	Stock
	Ratios StatementSeries
}

// ValueStock is a Value Scan result
type ValueStock struct {
	Stock
	PERatio         float64 `json:"pe_ratio"`
	PBRatio         float64 `json:"pb_ratio"`
	CurrentRatio    float64 `json:"current_ratio"`
	DebtEquityRatio float64 `json:"debt_equity_ratio"`
	NetProfitMargin float64 `json:"net_profit_margin"`
}

// CanslimInput carries earnings history and daily prices (index 0 = latest)
type CanslimInput struct {
	Stock
	AnnualIncome    StatementSeries
	QuarterlyIncome StatementSeries
	Prices          StatementSeries
}

// CanslimStock is a CANSLIM result
type CanslimStock struct {
	Stock
	Score    int     `json:"score"`
	Price    float64 `json:"price"`
	Criteria string  `json:"criteria"`
}
