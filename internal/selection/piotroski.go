package selection

import (
	"sort"

	"github.com/wonny/screener/internal/contracts"
)

// PiotroskiConfig controls the caller policy applied after scoring
type PiotroskiConfig struct {
	MinScore int `yaml:"min_score"` // 보유 최소 점수 (기본: 7)
}

// DefaultPiotroskiConfig returns the classic 7-of-9 cut
func DefaultPiotroskiConfig() PiotroskiConfig {
	return PiotroskiConfig{MinScore: 7}
}

// Piotroski computes the 9-point F-Score from two consecutive periods
// ⭐ SSOT: F-Score 계산은 여기서만
type Piotroski struct {
	config PiotroskiConfig
}

// NewPiotroski creates a new Piotroski engine
func NewPiotroski(config PiotroskiConfig) *Piotroski {
	return &Piotroski{config: config}
}

// Score returns OK(0..9) or Fail(InsufficientDataError)
func (p *Piotroski) Score(data contracts.PiotroskiInput) contracts.ScoreResult {
	res, err := p.Evaluate(data)
	if err != nil {
		return contracts.Fail(err)
	}
	return contracts.OK(res.FScore)
}

// Evaluate runs the nine tests and returns the per-test breakdown.
// Missing fields count as 0; total assets default to 1 when absent or zero.
func (p *Piotroski) Evaluate(data contracts.PiotroskiInput) (contracts.PiotroskiScore, error) {
	for _, s := range []struct {
		name   string
		series contracts.StatementSeries
	}{
		{"income", data.Income},
		{"balance", data.Balance},
		{"cashflow", data.CashFlow},
		{"ratios", data.Ratios},
	} {
		if err := s.series.Require(s.name, 2); err != nil {
			return contracts.PiotroskiScore{}, err
		}
	}

	incCY := data.Income.At(0)
	balCY, balPY := data.Balance.At(0), data.Balance.At(1)
	cfCY := data.CashFlow.At(0)
	ratCY, ratPY := data.Ratios.At(0), data.Ratios.At(1)

	netIncome := incCY.Value("netIncome")
	operatingCash := cfCY.Value("operatingCashFlow")

	c := contracts.PiotroskiCriteria{
		// Profitability
		PositiveNetIncome:     netIncome > 0,
		PositiveOperatingCash: operatingCash > 0,
		RisingROA:             ratCY.Value("returnOnAssets") > ratPY.Value("returnOnAssets"),
		CashExceedsIncome:     operatingCash > netIncome,

		// Leverage & liquidity
		FallingLeverage:    debtToAssets(balCY) < debtToAssets(balPY),
		RisingCurrentRatio: ratCY.Value("currentRatio") > ratPY.Value("currentRatio"),
		NoDilution:         balCY.Value("commonStock") <= balPY.Value("commonStock"),

		// Efficiency
		RisingGrossMargin:   ratCY.Value("grossProfitMargin") > ratPY.Value("grossProfitMargin"),
		RisingAssetTurnover: ratCY.Value("assetTurnover") > ratPY.Value("assetTurnover"),
	}

	return contracts.PiotroskiScore{
		Stock:    data.Stock,
		FScore:   c.Count(),
		Criteria: c,
	}, nil
}

// Select keeps scores at or above MinScore, best first.
// Equal scores keep input order.
func (p *Piotroski) Select(scores []contracts.PiotroskiScore) []contracts.PiotroskiScore {
	kept := make([]contracts.PiotroskiScore, 0, len(scores))
	for _, s := range scores {
		if s.FScore >= p.config.MinScore {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].FScore > kept[j].FScore
	})
	return kept
}

func debtToAssets(balance contracts.Period) float64 {
	assets := balance.Value("totalAssets")
	if assets == 0 {
		assets = 1
	}
	return balance.Value("longTermDebt") / assets
}
