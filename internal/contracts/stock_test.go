package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_UnmarshalDropsNonNumeric(t *testing.T) {
	var p Period
	err := json.Unmarshal([]byte(`{"date":"2024-03-31","symbol":"ABC","eps":1.25,"netIncome":100,"note":null}`), &p)
	require.NoError(t, err)

	assert.Len(t, p, 2)
	assert.Equal(t, 1.25, p.Value("eps"))
	assert.Equal(t, 100.0, p.Value("netIncome"))

	_, ok := p.Lookup("date")
	assert.False(t, ok)
	_, ok = p.Lookup("note")
	assert.False(t, ok, "null counts as missing")
}

func TestPeriod_ValueDefaultsToZero(t *testing.T) {
	p := Period{"a": 3}
	assert.Equal(t, 0.0, p.Value("missing"))

	v, ok := p.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestStatementSeries_At(t *testing.T) {
	s := StatementSeries{{"eps": 2}, {"eps": 1}}

	assert.Equal(t, 2.0, s.At(0).Value("eps"))
	assert.Equal(t, 1.0, s.At(1).Value("eps"))
	assert.Empty(t, s.At(2))
	assert.Empty(t, s.At(-1))
	assert.Equal(t, 0.0, StatementSeries(nil).At(0).Value("eps"))
}

func TestStatementSeries_Require(t *testing.T) {
	s := StatementSeries{{}}
	assert.NoError(t, s.Require("income", 1))

	err := s.Require("income", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, "income", ide.Series)
	assert.Equal(t, 2, ide.Need)
	assert.Equal(t, 1, ide.Got)
}

func TestStatementSeries_DecodeArray(t *testing.T) {
	var s StatementSeries
	err := json.Unmarshal([]byte(`[{"date":"2024","eps":3},{"date":"2023","eps":2}]`), &s)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, 3.0, s.At(0).Value("eps"))
}
