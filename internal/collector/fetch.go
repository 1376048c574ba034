package collector

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
)

// Statement limits per screener
const (
	magicFormulaLimit = 1
	piotroskiLimit    = 2
	valueScanLimit    = 1
	canslimLimit      = 5
)

func (c *Collector) fetchMagicFormula(ctx context.Context, s contracts.Stock) (contracts.MagicFormulaInput, error) {
	metrics, err := c.source.KeyMetrics(ctx, s.Symbol, magicFormulaLimit)
	if err != nil {
		return contracts.MagicFormulaInput{}, err
	}
	income, err := c.source.IncomeStatement(ctx, s.Symbol, "", magicFormulaLimit)
	if err != nil {
		return contracts.MagicFormulaInput{}, err
	}
	balance, err := c.source.BalanceSheet(ctx, s.Symbol, magicFormulaLimit)
	if err != nil {
		return contracts.MagicFormulaInput{}, err
	}

	if err := metrics.Require("key-metrics", 1); err != nil {
		return contracts.MagicFormulaInput{}, err
	}
	if err := income.Require("income", 1); err != nil {
		return contracts.MagicFormulaInput{}, err
	}
	if err := balance.Require("balance", 1); err != nil {
		return contracts.MagicFormulaInput{}, err
	}

	inc, bal := income.At(0), balance.At(0)
	return contracts.MagicFormulaInput{
		Stock:           s,
		EnterpriseValue: metrics.At(0).Value("enterpriseValue"),
		EBIT:            inc.Value("ebitda") - inc.Value("depreciationAndAmortization"),
		WorkingCapital:  bal.Value("totalCurrentAssets") - bal.Value("totalCurrentLiabilities"),
		NetFixedAssets:  bal.Value("propertyPlantEquipmentNet"),
	}, nil
}

func (c *Collector) fetchPiotroski(ctx context.Context, s contracts.Stock) (contracts.PiotroskiScore, error) {
	in := contracts.PiotroskiInput{Stock: s}
	var err error

	if in.Income, err = c.source.IncomeStatement(ctx, s.Symbol, "", piotroskiLimit); err != nil {
		return contracts.PiotroskiScore{}, err
	}
	if in.Balance, err = c.source.BalanceSheet(ctx, s.Symbol, piotroskiLimit); err != nil {
		return contracts.PiotroskiScore{}, err
	}
	if in.CashFlow, err = c.source.CashFlow(ctx, s.Symbol, piotroskiLimit); err != nil {
		return contracts.PiotroskiScore{}, err
	}
	if in.Ratios, err = c.source.Ratios(ctx, s.Symbol, piotroskiLimit); err != nil {
		return contracts.PiotroskiScore{}, err
	}

	// 점수 계산 실패(데이터 부족)도 심볼 제외 사유
	return c.piotroski.Evaluate(in)
}

func (c *Collector) fetchValueScan(ctx context.Context, s contracts.Stock) (contracts.ValueInput, error) {
	ratios, err := c.source.Ratios(ctx, s.Symbol, valueScanLimit)
	if err != nil {
		return contracts.ValueInput{}, err
	}
	return contracts.ValueInput{Stock: s, Ratios: ratios}, nil
}

func (c *Collector) fetchCanslim(ctx context.Context, s contracts.Stock) (contracts.CanslimInput, error) {
	in := contracts.CanslimInput{Stock: s}
	var err error

	if in.AnnualIncome, err = c.source.IncomeStatement(ctx, s.Symbol, contracts.PeriodAnnual, canslimLimit); err != nil {
		return contracts.CanslimInput{}, err
	}
	if in.QuarterlyIncome, err = c.source.IncomeStatement(ctx, s.Symbol, contracts.PeriodQuarterly, canslimLimit); err != nil {
		return contracts.CanslimInput{}, err
	}
	if in.Prices, err = c.source.HistoricalPrices(ctx, s.Symbol, c.screens.Canslim.PriceWindow); err != nil {
		return contracts.CanslimInput{}, err
	}
	return in, nil
}
