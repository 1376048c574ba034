package screenconfig

import (
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
)

// Config holds screener thresholds and batch settings
// ⭐ SSOT: 스크리너 임계값/배치 설정은 여기서만
type Config struct {
	Meta      Meta                      `yaml:"meta" json:"meta"`
	Batches   Batches                   `yaml:"batches" json:"batches"`
	Snapshot  SnapshotConfig            `yaml:"snapshot" json:"snapshot"`
	Piotroski selection.PiotroskiConfig `yaml:"piotroski" json:"piotroski"`
	ValueScan selection.ValueScanConfig `yaml:"value_scan" json:"value_scan"`
	Canslim   selection.CanslimConfig   `yaml:"canslim" json:"canslim"`
}

// Meta identifies the configuration
type Meta struct {
	Version string `yaml:"version" json:"version"`
}

// Batch is a per-screener universe prefix and pacing interval.
// Screeners needing more calls per symbol use smaller batches.
type Batch struct {
	Size  int           `yaml:"size" json:"size"`
	Delay time.Duration `yaml:"delay" json:"delay"`
}

// Batches holds batch settings per screener
type Batches struct {
	MagicFormula Batch `yaml:"magic_formula" json:"magic_formula"`
	Piotroski    Batch `yaml:"piotroski" json:"piotroski"`
	ValueScan    Batch `yaml:"value_scan" json:"value_scan"`
	Canslim      Batch `yaml:"canslim" json:"canslim"`
	Daily        Batch `yaml:"daily" json:"daily"` // 일일 워커 (3개 스크리너 공용)
}

// For returns the batch of one screener
func (b Batches) For(id contracts.ScreenerID) Batch {
	switch id {
	case contracts.MagicFormula:
		return b.MagicFormula
	case contracts.Piotroski:
		return b.Piotroski
	case contracts.ValueScan:
		return b.ValueScan
	case contracts.Canslim:
		return b.Canslim
	default:
		return b.Daily
	}
}

// SnapshotConfig controls persisted snapshots
type SnapshotConfig struct {
	TopN int `yaml:"top_n" json:"top_n"` // 0 = 전체 저장
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Meta: Meta{Version: "default"},
		Batches: Batches{
			MagicFormula: Batch{Size: 100, Delay: 100 * time.Millisecond},
			Piotroski:    Batch{Size: 80, Delay: 100 * time.Millisecond},
			ValueScan:    Batch{Size: 200, Delay: 100 * time.Millisecond},
			Canslim:      Batch{Size: 50, Delay: 150 * time.Millisecond},
			Daily:        Batch{Size: 300, Delay: 100 * time.Millisecond},
		},
		Snapshot:  SnapshotConfig{TopN: 50},
		Piotroski: selection.DefaultPiotroskiConfig(),
		ValueScan: selection.DefaultValueScanConfig(),
		Canslim:   selection.DefaultCanslimConfig(),
	}
}
