package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
)

func mfInput(symbol string, ebit, ev, nfa, wc float64) contracts.MagicFormulaInput {
	return contracts.MagicFormulaInput{
		Stock:           contracts.Stock{Symbol: symbol},
		EBIT:            ebit,
		EnterpriseValue: ev,
		NetFixedAssets:  nfa,
		WorkingCapital:  wc,
	}
}

func TestMagicFormula_Example(t *testing.T) {
	ranked := NewMagicFormula().Rank([]contracts.MagicFormulaInput{
		mfInput("A", 100, 1000, 200, 300),
		mfInput("B", 50, 200, 100, 100),
	})

	require.Len(t, ranked, 2)

	assert.Equal(t, "B", ranked[0].Symbol)
	assert.InDelta(t, 0.25, ranked[0].EarningsYield, 1e-9)
	assert.InDelta(t, 0.25, ranked[0].ReturnOnCapital, 1e-9)
	assert.Equal(t, 1, ranked[0].EYRank)
	assert.Equal(t, 1, ranked[0].ROCRank)
	assert.Equal(t, 2, ranked[0].CombinedRank)

	assert.Equal(t, "A", ranked[1].Symbol)
	assert.InDelta(t, 0.10, ranked[1].EarningsYield, 1e-9)
	assert.InDelta(t, 0.20, ranked[1].ReturnOnCapital, 1e-9)
	assert.Equal(t, 4, ranked[1].CombinedRank)
}

func TestMagicFormula_Discards(t *testing.T) {
	tests := []struct {
		name  string
		input contracts.MagicFormulaInput
	}{
		{"zero enterprise value", mfInput("X", 10, 0, 10, 10)},
		{"zero ebit", mfInput("X", 0, 100, 10, 10)},
		{"zero capital", mfInput("X", 10, 100, 10, -10)},
		{"negative capital", mfInput("X", 10, 100, 5, -50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := NewMagicFormula().Rank([]contracts.MagicFormulaInput{tt.input, mfInput("OK", 10, 100, 10, 10)})
			require.Len(t, ranked, 1)
			assert.Equal(t, "OK", ranked[0].Symbol)
		})
	}
}

func TestMagicFormula_Empty(t *testing.T) {
	ranked := NewMagicFormula().Rank(nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestMagicFormula_TiesKeepInputOrder(t *testing.T) {
	ranked := NewMagicFormula().Rank([]contracts.MagicFormulaInput{
		mfInput("FIRST", 10, 100, 50, 50),
		mfInput("SECOND", 10, 100, 50, 50),
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "FIRST", ranked[0].Symbol)
	assert.Equal(t, 1, ranked[0].EYRank)
	assert.Equal(t, 2, ranked[1].EYRank)
}

func TestMagicFormula_CombinedTieKeepsEYOrder(t *testing.T) {
	// HIGHROC: EY rank 2, ROC rank 1 ; HIGHEY: EY rank 1, ROC rank 2 -> both 3
	ranked := NewMagicFormula().Rank([]contracts.MagicFormulaInput{
		mfInput("HIGHROC", 10, 200, 5, 5),
		mfInput("HIGHEY", 10, 50, 50, 50),
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, 3, ranked[0].CombinedRank)
	assert.Equal(t, 3, ranked[1].CombinedRank)
	assert.Equal(t, "HIGHEY", ranked[0].Symbol)
}

func TestMagicFormula_Properties(t *testing.T) {
	inputs := make([]contracts.MagicFormulaInput, 0, 40)
	for i := 0; i < 40; i++ {
		ebit := float64((i*37)%23 - 5)
		ev := float64((i*13)%17) * 100
		nfa := float64((i*7)%11) * 10
		wc := float64((i*5)%9-4) * 10
		inputs = append(inputs, mfInput(string(rune('A'+i%26))+string(rune('a'+i/26)), ebit, ev, nfa, wc))
	}
	before := append([]contracts.MagicFormulaInput(nil), inputs...)

	ranked := NewMagicFormula().Rank(inputs)

	for i, r := range ranked {
		assert.Greater(t, r.Capital(), 0.0, "non-positive capital must never be ranked")
		assert.NotZero(t, r.EBIT)
		assert.NotZero(t, r.EnterpriseValue)
		assert.Less(t, r.EYRank, contracts.MissingRank)
		if i > 0 {
			assert.LessOrEqual(t, ranked[i-1].CombinedRank, r.CombinedRank)
		}
	}
	assert.Equal(t, before, inputs, "input must not be mutated")
}
