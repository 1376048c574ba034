package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

// exampleInput reproduces the worked example: only 3 tests pass
func exampleInput() contracts.PiotroskiInput {
	return contracts.PiotroskiInput{
		Stock: contracts.Stock{Symbol: "EX"},
		Income: contracts.StatementSeries{
			{"netIncome": 100},
			{"netIncome": 90},
		},
		CashFlow: contracts.StatementSeries{
			{"operatingCashFlow": 80},
			{"operatingCashFlow": 70},
		},
		Balance: contracts.StatementSeries{
			{"longTermDebt": 400, "totalAssets": 1000, "commonStock": 1000},
			{"longTermDebt": 300, "totalAssets": 1000, "commonStock": 1000},
		},
		Ratios: contracts.StatementSeries{
			{"returnOnAssets": 0.04, "currentRatio": 1.2, "grossProfitMargin": 0.35, "assetTurnover": 0.8},
			{"returnOnAssets": 0.05, "currentRatio": 1.5, "grossProfitMargin": 0.40, "assetTurnover": 0.9},
		},
	}
}

func TestPiotroski_Example(t *testing.T) {
	p := NewPiotroski(DefaultPiotroskiConfig())
	in := exampleInput()

	res, err := p.Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, 3, res.FScore)
	assert.True(t, res.Criteria.PositiveNetIncome)
	assert.True(t, res.Criteria.PositiveOperatingCash)
	assert.True(t, res.Criteria.NoDilution)
	assert.False(t, res.Criteria.CashExceedsIncome)
	assert.False(t, res.Criteria.FallingLeverage)

	score, err := p.Score(in).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 3, score)

	assert.Empty(t, p.Select([]contracts.PiotroskiScore{res}), "score 3 is below the 7 cut")
}

func TestPiotroski_InsufficientData(t *testing.T) {
	p := NewPiotroski(DefaultPiotroskiConfig())

	for _, series := range []string{"income", "balance", "cashflow", "ratios"} {
		t.Run(series, func(t *testing.T) {
			in := exampleInput()
			switch series {
			case "income":
				in.Income = in.Income[:1]
			case "balance":
				in.Balance = in.Balance[:1]
			case "cashflow":
				in.CashFlow = nil
			case "ratios":
				in.Ratios = in.Ratios[:1]
			}

			res := p.Score(in)
			assert.False(t, res.IsOK())
			_, err := res.Unwrap()
			assert.ErrorIs(t, err, contracts.ErrInsufficientData)

			var ide *contracts.InsufficientDataError
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, series, ide.Series)
		})
	}
}

func TestPiotroski_PerfectScore(t *testing.T) {
	in := contracts.PiotroskiInput{
		Income:   contracts.StatementSeries{{"netIncome": 10}, {"netIncome": 5}},
		CashFlow: contracts.StatementSeries{{"operatingCashFlow": 20}, {}},
		Balance: contracts.StatementSeries{
			{"longTermDebt": 10, "totalAssets": 100, "commonStock": 50},
			{"longTermDebt": 20, "totalAssets": 100, "commonStock": 60},
		},
		Ratios: contracts.StatementSeries{
			{"returnOnAssets": 0.1, "currentRatio": 2, "grossProfitMargin": 0.5, "assetTurnover": 1.1},
			{"returnOnAssets": 0.05, "currentRatio": 1, "grossProfitMargin": 0.4, "assetTurnover": 1.0},
		},
	}

	score, err := NewPiotroski(DefaultPiotroskiConfig()).Score(in).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 9, score)
}

func TestPiotroski_MissingFieldsDefaultToZero(t *testing.T) {
	in := contracts.PiotroskiInput{
		Income:   contracts.StatementSeries{{}, {}},
		CashFlow: contracts.StatementSeries{{}, {}},
		Balance:  contracts.StatementSeries{{}, {}},
		Ratios:   contracts.StatementSeries{{}, {}},
	}

	res, err := NewPiotroski(DefaultPiotroskiConfig()).Evaluate(in)
	require.NoError(t, err)
	// 0 <= 0 is the only comparison that holds
	assert.Equal(t, 1, res.FScore)
	assert.True(t, res.Criteria.NoDilution)
}

func TestPiotroski_ZeroTotalAssetsGuarded(t *testing.T) {
	in := exampleInput()
	in.Balance = contracts.StatementSeries{
		{"longTermDebt": 1, "totalAssets": 0},
		{"longTermDebt": 2},
	}

	res, err := NewPiotroski(DefaultPiotroskiConfig()).Evaluate(in)
	require.NoError(t, err)
	assert.True(t, res.Criteria.FallingLeverage, "1/1 < 2/1")
}

func TestPiotroski_Monotonic(t *testing.T) {
	p := NewPiotroski(DefaultPiotroskiConfig())
	baseScore, _ := p.Score(exampleInput()).Unwrap()
	require.Equal(t, 3, baseScore)

	flips := map[string]func(in *contracts.PiotroskiInput){
		"rising roa":       func(in *contracts.PiotroskiInput) { in.Ratios[0]["returnOnAssets"] = 0.06 },
		"cash over income": func(in *contracts.PiotroskiInput) { in.CashFlow[0]["operatingCashFlow"] = 150 },
		"falling leverage": func(in *contracts.PiotroskiInput) { in.Balance[0]["longTermDebt"] = 100 },
		"rising current":   func(in *contracts.PiotroskiInput) { in.Ratios[0]["currentRatio"] = 1.6 },
		"rising margin":    func(in *contracts.PiotroskiInput) { in.Ratios[0]["grossProfitMargin"] = 0.45 },
		"rising turnover":  func(in *contracts.PiotroskiInput) { in.Ratios[0]["assetTurnover"] = 1.0 },
	}

	for name, flip := range flips {
		t.Run(name, func(t *testing.T) {
			in := exampleInput()
			flip(&in)

			score, err := p.Score(in).Unwrap()
			require.NoError(t, err)
			assert.Equal(t, baseScore+1, score)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 9)
		})
	}
}

func TestPiotroski_Select(t *testing.T) {
	p := NewPiotroski(DefaultPiotroskiConfig())
	got := p.Select([]contracts.PiotroskiScore{
		{Stock: contracts.Stock{Symbol: "A"}, FScore: 7},
		{Stock: contracts.Stock{Symbol: "B"}, FScore: 9},
		{Stock: contracts.Stock{Symbol: "C"}, FScore: 6},
		{Stock: contracts.Stock{Symbol: "D"}, FScore: 7},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Symbol)
	assert.Equal(t, "A", got[1].Symbol)
	assert.Equal(t, "D", got[2].Symbol)
}
