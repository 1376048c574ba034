package contracts

import (
	"encoding/json"
	"fmt"
)

// Stock identifies a listed equity
// ⭐ SSOT: 종목 식별자는 여기서만
type Stock struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Period is one reporting period of a statement or one row of a price series.
// Only numeric fields are kept; dates and labels are dropped on decode.
type Period map[string]float64

// Value returns the named field, or 0 when it is absent
func (p Period) Value(field string) float64 {
	return p[field]
}

// Lookup returns the named field and whether it was present
func (p Period) Lookup(field string) (float64, bool) {
	v, ok := p[field]
	return v, ok
}

// UnmarshalJSON keeps numeric fields and silently drops everything else
// (strings, nulls, nested objects).
func (p *Period) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode period: %w", err)
	}

	out := make(Period, len(raw))
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	*p = out
	return nil
}

// StatementSeries is an ordered sequence of periods, index 0 = most recent.
// Index i is always one period more recent than index i+1.
type StatementSeries []Period

// At returns the i-th period, or an empty period when out of range
func (s StatementSeries) At(i int) Period {
	if i < 0 || i >= len(s) {
		return Period{}
	}
	return s[i]
}

// Require returns InsufficientDataError when the series is shorter than need
func (s StatementSeries) Require(name string, need int) error {
	if len(s) < need {
		return &InsufficientDataError{Series: name, Need: need, Got: len(s)}
	}
	return nil
}

// Quote is a live price quote
type Quote struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
}
