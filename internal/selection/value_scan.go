package selection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wonny/screener/internal/contracts"
)

// ValueScanConfig holds Graham-style thresholds. All bounds are strict.
type ValueScanConfig struct {
	MaxPE           float64 `yaml:"max_pe"`            // 0 < PER < 15
	MaxPB           float64 `yaml:"max_pb"`            // 0 < PBR < 1.5
	MinCurrentRatio float64 `yaml:"min_current_ratio"` // > 2
	MaxDebtEquity   float64 `yaml:"max_debt_equity"`   // < 0.5
	MinNetMargin    float64 `yaml:"min_net_margin"`    // > 0
}

// DefaultValueScanConfig returns the classic Graham thresholds
func DefaultValueScanConfig() ValueScanConfig {
	return ValueScanConfig{
		MaxPE:           15,
		MaxPB:           1.5,
		MinCurrentRatio: 2,
		MaxDebtEquity:   0.5,
		MinNetMargin:    0,
	}
}

// ValueScan filters stocks on the most recent ratio snapshot
// ⭐ SSOT: 가치 필터 로직은 여기서만
type ValueScan struct {
	config ValueScanConfig
}

// NewValueScan creates a new Value Scan engine
func NewValueScan(config ValueScanConfig) *ValueScan {
	return &ValueScan{config: config}
}

// Filter keeps stocks passing every threshold, cheapest P/E first
func (v *ValueScan) Filter(stocks []contracts.ValueInput) []contracts.ValueStock {
	out := make([]contracts.ValueStock, 0)
	for _, s := range stocks {
		vs, err := v.Check(s)
		if err != nil {
			continue
		}
		out = append(out, vs)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PERatio < out[j].PERatio
	})
	return out
}

// Check validates one stock. The error joins one *contracts.ValidationError per failed field.
func (v *ValueScan) Check(s contracts.ValueInput) (contracts.ValueStock, error) {
	if len(s.Ratios) == 0 {
		return contracts.ValueStock{}, &contracts.ValidationError{Field: "ratios", Reason: "no ratio snapshot"}
	}
	r := s.Ratios.At(0)

	var errs []error
	pe := v.require(r, "priceEarningsRatio", &errs, func(x float64) bool { return x > 0 && x < v.config.MaxPE },
		fmt.Sprintf("must be in (0, %g)", v.config.MaxPE))
	pb := v.require(r, "priceToBookRatio", &errs, func(x float64) bool { return x > 0 && x < v.config.MaxPB },
		fmt.Sprintf("must be in (0, %g)", v.config.MaxPB))
	cr := v.require(r, "currentRatio", &errs, func(x float64) bool { return x > v.config.MinCurrentRatio },
		fmt.Sprintf("must be > %g", v.config.MinCurrentRatio))
	de := v.require(r, "debtEquityRatio", &errs, func(x float64) bool { return x < v.config.MaxDebtEquity },
		fmt.Sprintf("must be < %g", v.config.MaxDebtEquity))
	// 순이익률은 없으면 실패로 처리
	npm := v.require(r, "netProfitMargin", &errs, func(x float64) bool { return x > v.config.MinNetMargin },
		fmt.Sprintf("must be > %g", v.config.MinNetMargin))

	if len(errs) > 0 {
		return contracts.ValueStock{}, errors.Join(errs...)
	}

	return contracts.ValueStock{
		Stock:           s.Stock,
		PERatio:         pe,
		PBRatio:         pb,
		CurrentRatio:    cr,
		DebtEquityRatio: de,
		NetProfitMargin: npm,
	}, nil
}

func (v *ValueScan) require(r contracts.Period, field string, errs *[]error, ok func(float64) bool, reason string) float64 {
	x, present := r.Lookup(field)
	switch {
	case !present:
		*errs = append(*errs, &contracts.ValidationError{Field: field, Reason: "missing"})
	case !ok(x):
		*errs = append(*errs, &contracts.ValidationError{Field: field, Reason: reason})
	}
	return x
}
