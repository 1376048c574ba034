package screenconfig

import (
	"github.com/wonny/screener/internal/contracts"
)

// Validate checks all required constraints.
// The first violation is returned as *contracts.ValidationError.
func Validate(cfg *Config) error {
	// === Batches ===
	for _, b := range []struct {
		field string
		batch Batch
	}{
		{"batches.magic_formula", cfg.Batches.MagicFormula},
		{"batches.piotroski", cfg.Batches.Piotroski},
		{"batches.value_scan", cfg.Batches.ValueScan},
		{"batches.canslim", cfg.Batches.Canslim},
		{"batches.daily", cfg.Batches.Daily},
	} {
		if b.batch.Size <= 0 {
			return &contracts.ValidationError{Field: b.field + ".size", Reason: "must be > 0"}
		}
		if b.batch.Delay < 0 {
			return &contracts.ValidationError{Field: b.field + ".delay", Reason: "must be >= 0"}
		}
	}

	// === Snapshot ===
	if cfg.Snapshot.TopN < 0 {
		return &contracts.ValidationError{Field: "snapshot.top_n", Reason: "must be >= 0"}
	}

	// === Piotroski ===
	if cfg.Piotroski.MinScore < 0 || cfg.Piotroski.MinScore > 9 {
		return &contracts.ValidationError{Field: "piotroski.min_score", Reason: "must be in [0, 9]"}
	}

	// === Value Scan ===
	if cfg.ValueScan.MaxPE <= 0 {
		return &contracts.ValidationError{Field: "value_scan.max_pe", Reason: "must be > 0"}
	}
	if cfg.ValueScan.MaxPB <= 0 {
		return &contracts.ValidationError{Field: "value_scan.max_pb", Reason: "must be > 0"}
	}
	if cfg.ValueScan.MinCurrentRatio < 0 {
		return &contracts.ValidationError{Field: "value_scan.min_current_ratio", Reason: "must be >= 0"}
	}

	// === CANSLIM ===
	if cfg.Canslim.AnnualYears < 1 {
		return &contracts.ValidationError{Field: "canslim.annual_years", Reason: "must be >= 1"}
	}
	if cfg.Canslim.HighProximity <= 0 || cfg.Canslim.HighProximity > 1 {
		return &contracts.ValidationError{Field: "canslim.high_proximity", Reason: "must be in (0, 1]"}
	}
	if cfg.Canslim.PriceWindow < 1 {
		return &contracts.ValidationError{Field: "canslim.price_window", Reason: "must be >= 1"}
	}

	return nil
}
