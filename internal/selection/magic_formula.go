package selection

import (
	"sort"

	"github.com/wonny/screener/internal/contracts"
)

// MagicFormula ranks stocks by earnings yield and return on capital
// ⭐ SSOT: Magic Formula 랭킹 로직은 여기서만
type MagicFormula struct{}

// NewMagicFormula creates a new Magic Formula engine
func NewMagicFormula() *MagicFormula {
	return &MagicFormula{}
}

// Rank returns surviving stocks ordered by combined rank (lower is better).
// Stocks with zero enterprise value, zero EBIT or non-positive capital are discarded.
func (m *MagicFormula) Rank(stocks []contracts.MagicFormulaInput) []contracts.RankedStock {
	pool := make([]contracts.RankedStock, 0, len(stocks))
	for _, s := range stocks {
		capital := s.Capital()
		if s.EnterpriseValue == 0 || s.EBIT == 0 || capital <= 0 {
			continue
		}
		pool = append(pool, contracts.RankedStock{
			MagicFormulaInput: s,
			EarningsYield:     s.EBIT / s.EnterpriseValue,
			ReturnOnCapital:   s.EBIT / capital,
			EYRank:            contracts.MissingRank,
			ROCRank:           contracts.MissingRank,
		})
	}

	if len(pool) == 0 {
		return pool
	}

	// 두 랭킹 모두 입력 순서에서 독립적으로 안정 정렬
	byEY := indexOrder(len(pool))
	sort.SliceStable(byEY, func(i, j int) bool {
		return pool[byEY[i]].EarningsYield > pool[byEY[j]].EarningsYield
	})
	for rank, idx := range byEY {
		pool[idx].EYRank = rank + 1
	}

	byROC := indexOrder(len(pool))
	sort.SliceStable(byROC, func(i, j int) bool {
		return pool[byROC[i]].ReturnOnCapital > pool[byROC[j]].ReturnOnCapital
	})
	for rank, idx := range byROC {
		pool[idx].ROCRank = rank + 1
	}

	// Ties on combined rank keep earnings-yield order
	ranked := make([]contracts.RankedStock, len(pool))
	for i, idx := range byEY {
		s := pool[idx]
		s.CombinedRank = s.EYRank + s.ROCRank
		ranked[i] = s
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedRank < ranked[j].CombinedRank
	})

	return ranked
}

func indexOrder(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
