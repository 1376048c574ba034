package contracts

import (
	"fmt"
	"time"
)

// ScreenerID names one of the four screening strategies
type ScreenerID string

const (
	MagicFormula ScreenerID = "magic_formula"
	Piotroski    ScreenerID = "piotroski"
	ValueScan    ScreenerID = "value_scan"
	Canslim      ScreenerID = "canslim"
)

// AllScreeners lists screeners in display order
var AllScreeners = []ScreenerID{MagicFormula, Piotroski, ValueScan, Canslim}

// Title returns the human readable name
func (id ScreenerID) Title() string {
	switch id {
	case MagicFormula:
		return "Magic Formula"
	case Piotroski:
		return "Piotroski F-Score"
	case ValueScan:
		return "Value Scan"
	case Canslim:
		return "CANSLIM"
	default:
		return string(id)
	}
}

// ParseScreenerID validates a screener name
func ParseScreenerID(s string) (ScreenerID, error) {
	for _, id := range AllScreeners {
		if string(id) == s {
			return id, nil
		}
	}
	return "", &ValidationError{Field: "screener", Reason: fmt.Sprintf("unknown screener %q", s)}
}

// Outcome distinguishes an empty batch from a populated one.
// A batch-level failure is an error, never an Outcome.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeNoResults Outcome = "no_results"
)

// BatchStats summarises pool assembly
type BatchStats struct {
	Requested int            `json:"requested"`
	Kept      int            `json:"kept"`
	Dropped   map[string]int `json:"dropped,omitempty"` // reason -> count
	Duration  time.Duration  `json:"duration"`
}

// Report is one screener run, the unit persisted by a SnapshotStore
// ⭐ SSOT: 스크리너 실행 결과
type Report struct {
	Screener    ScreenerID `json:"screener"`
	RunID       string     `json:"run_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	ConfigHash  string     `json:"config_hash"`
	Outcome     Outcome    `json:"outcome"`
	Stats       BatchStats `json:"stats"`

	MagicFormula []RankedStock    `json:"magic_formula,omitempty"`
	Piotroski    []PiotroskiScore `json:"piotroski,omitempty"`
	Value        []ValueStock     `json:"value_scan,omitempty"`
	Canslim      []CanslimStock   `json:"canslim,omitempty"`

	Quotes map[string]Quote `json:"quotes,omitempty"`
}

// Len returns the number of result rows
func (r *Report) Len() int {
	switch r.Screener {
	case MagicFormula:
		return len(r.MagicFormula)
	case Piotroski:
		return len(r.Piotroski)
	case ValueScan:
		return len(r.Value)
	case Canslim:
		return len(r.Canslim)
	default:
		return 0
	}
}

// Stocks returns result identities in result order
func (r *Report) Stocks() []Stock {
	out := make([]Stock, 0, r.Len())
	switch r.Screener {
	case MagicFormula:
		for _, s := range r.MagicFormula {
			out = append(out, s.Stock)
		}
	case Piotroski:
		for _, s := range r.Piotroski {
			out = append(out, s.Stock)
		}
	case ValueScan:
		for _, s := range r.Value {
			out = append(out, s.Stock)
		}
	case Canslim:
		for _, s := range r.Canslim {
			out = append(out, s.Stock)
		}
	}
	return out
}

// Symbols returns result symbols in result order
func (r *Report) Symbols() []string {
	stocks := r.Stocks()
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Symbol
	}
	return out
}

// Finalize sets Outcome from the result count
func (r *Report) Finalize() {
	r.Stats.Kept = r.Len()
	if r.Stats.Kept == 0 {
		r.Outcome = OutcomeNoResults
		return
	}
	r.Outcome = OutcomeOK
}

// Top returns a copy capped at n rows (n <= 0 keeps everything).
// Quotes for dropped rows are removed too.
func (r *Report) Top(n int) *Report {
	cp := *r
	if n <= 0 || r.Len() <= n {
		return &cp
	}

	cp.MagicFormula = capSlice(r.MagicFormula, n)
	cp.Piotroski = capSlice(r.Piotroski, n)
	cp.Value = capSlice(r.Value, n)
	cp.Canslim = capSlice(r.Canslim, n)

	if r.Quotes != nil {
		cp.Quotes = make(map[string]Quote, n)
		for _, sym := range cp.Symbols() {
			if q, ok := r.Quotes[sym]; ok {
				cp.Quotes[sym] = q
			}
		}
	}
	return &cp
}

func capSlice[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	out := make([]T, n)
	copy(out, s[:n])
	return out
}
