package selection

import (
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// CanslimConfig holds the C, A and N thresholds
type CanslimConfig struct {
	QuarterlyGrowth float64 `yaml:"quarterly_growth"` // C: 전년 동기 대비 EPS 성장률 (기본: 0.25)
	AnnualGrowth    float64 `yaml:"annual_growth"`    // A: 연간 EPS 성장률 (기본: 0.25)
	AnnualYears     int     `yaml:"annual_years"`     // A: 연속 성장 연수 (기본: 3)
	HighProximity   float64 `yaml:"high_proximity"`   // N: 52주 고가 대비 (기본: 0.85)
	PriceWindow     int     `yaml:"price_window"`     // N: 최근 N일 (기본: 365)
}

// DefaultCanslimConfig returns the default CANSLIM thresholds
func DefaultCanslimConfig() CanslimConfig {
	return CanslimConfig{
		QuarterlyGrowth: 0.25,
		AnnualGrowth:    0.25,
		AnnualYears:     3,
		HighProximity:   0.85,
		PriceWindow:     365,
	}
}

// quarterLag compares a quarter with the same quarter one year earlier
const quarterLag = 4

// Canslim evaluates current earnings, annual earnings and new highs.
// S, L and I are not scored.
// ⭐ SSOT: CANSLIM 판정은 여기서만
type Canslim struct {
	config CanslimConfig
}

// NewCanslim creates a new CANSLIM engine
func NewCanslim(config CanslimConfig) *Canslim {
	return &Canslim{config: config}
}

// Screen returns stocks passing all three checks, in input order
func (c *Canslim) Screen(stocks []contracts.CanslimInput) []contracts.CanslimStock {
	out := make([]contracts.CanslimStock, 0)
	for _, s := range stocks {
		res := c.Evaluate(s)
		if res.Score == 3 {
			out = append(out, res)
		}
	}
	return out
}

// Evaluate scores one stock without applying the all-three gate
func (c *Canslim) Evaluate(s contracts.CanslimInput) contracts.CanslimStock {
	var met []string
	if c.CurrentEarnings(s.QuarterlyIncome) {
		met = append(met, "C")
	}
	if c.AnnualEarnings(s.AnnualIncome) {
		met = append(met, "A")
	}
	if c.NewHighs(s.Prices) {
		met = append(met, "N")
	}

	return contracts.CanslimStock{
		Stock:    s.Stock,
		Score:    len(met),
		Price:    s.Prices.At(0).Value("close"),
		Criteria: strings.Join(met, ", "),
	}
}

// CurrentEarnings: latest quarterly EPS vs the same quarter a year ago
func (c *Canslim) CurrentEarnings(quarterly contracts.StatementSeries) bool {
	if len(quarterly) < quarterLag+1 {
		return false
	}
	return growthAbove(quarterly.At(0).Value("eps"), quarterly.At(quarterLag).Value("eps"), c.config.QuarterlyGrowth)
}

// AnnualEarnings: every one of the last AnnualYears year-over-year pairs must grow
func (c *Canslim) AnnualEarnings(annual contracts.StatementSeries) bool {
	years := c.config.AnnualYears
	if len(annual) < years+1 {
		return false
	}
	for i := 0; i < years; i++ {
		if !growthAbove(annual.At(i).Value("eps"), annual.At(i+1).Value("eps"), c.config.AnnualGrowth) {
			return false
		}
	}
	return true
}

// NewHighs: latest close within HighProximity of the window's highest high
func (c *Canslim) NewHighs(prices contracts.StatementSeries) bool {
	if len(prices) == 0 {
		return false
	}
	if c.config.PriceWindow > 0 && len(prices) > c.config.PriceWindow {
		prices = prices[:c.config.PriceWindow]
	}

	high := 0.0
	for i, p := range prices {
		if h := p.Value("high"); i == 0 || h > high {
			high = h
		}
	}
	if high == 0 {
		return false
	}

	return prices.At(0).Value("close")/high >= c.config.HighProximity
}

// growthAbove requires a positive base so growth off a loss never counts
func growthAbove(current, prior, threshold float64) bool {
	if prior <= 0 {
		return false
	}
	return (current-prior)/prior > threshold
}
