package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScreenerID(t *testing.T) {
	for _, id := range AllScreeners {
		got, err := ParseScreenerID(string(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := ParseScreenerID("momentum")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestReport_Finalize(t *testing.T) {
	r := &Report{Screener: ValueScan}
	r.Finalize()
	assert.Equal(t, OutcomeNoResults, r.Outcome)

	r.Value = []ValueStock{{Stock: Stock{Symbol: "A"}}}
	r.Finalize()
	assert.Equal(t, OutcomeOK, r.Outcome)
	assert.Equal(t, 1, r.Stats.Kept)
}

func TestReport_Top(t *testing.T) {
	r := &Report{
		Screener: Canslim,
		Canslim: []CanslimStock{
			{Stock: Stock{Symbol: "A"}},
			{Stock: Stock{Symbol: "B"}},
			{Stock: Stock{Symbol: "C"}},
		},
		Quotes: map[string]Quote{
			"A": {Symbol: "A", Price: 1},
			"C": {Symbol: "C", Price: 3},
		},
	}

	top := r.Top(2)
	assert.Equal(t, []string{"A", "B"}, top.Symbols())
	assert.Len(t, top.Quotes, 1)
	assert.Contains(t, top.Quotes, "A")

	// original untouched
	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Quotes, 2)

	assert.Equal(t, 3, r.Top(0).Len())
	assert.Equal(t, 3, r.Top(10).Len())
}

func TestRankedStock_JSONFlattensIdentity(t *testing.T) {
	rs := RankedStock{
		MagicFormulaInput: MagicFormulaInput{Stock: Stock{Symbol: "B", Name: "Bee"}, EBIT: 50},
		CombinedRank:      2,
	}
	data, err := json.Marshal(rs)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "B", m["symbol"])
	assert.Equal(t, "Bee", m["name"])
	assert.Equal(t, 50.0, m["ebit"])
	assert.Equal(t, 2.0, m["combined_rank"])
}

func TestPiotroskiCriteria_Count(t *testing.T) {
	assert.Equal(t, 0, PiotroskiCriteria{}.Count())
	assert.Equal(t, 2, PiotroskiCriteria{NoDilution: true, RisingROA: true}.Count())
}
