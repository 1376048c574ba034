package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [screener]",
	Short: "스크리너 1회 실행",
	Long: `하나의 스크리너를 즉시 실행하고 결과를 출력합니다.

Screeners:
  magic_formula  - Earnings yield + return on capital 결합 순위
  piotroski      - F-Score 9개 항목 (기본 7점 이상)
  value_scan     - P/E, P/B, 유동비율, 부채비율, 순이익률 필터
  canslim        - 분기/연간 EPS 성장 + 52주 신고가 근접

Example:
  go run ./cmd/screener scan magic_formula
  go run ./cmd/screener scan piotroski --batch 20
  go run ./cmd/screener scan value_scan --json > value.json
  go run ./cmd/screener scan canslim --save`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: screenerNames(),
	RunE:      runScan,
}

var (
	scanLimit int
	scanBatch int
	scanSave  bool
	scanJSON  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanLimit, "limit", 25, "출력할 최대 종목 수 (0 = 전체)")
	scanCmd.Flags().IntVar(&scanBatch, "batch", 0, "유니버스 배치 크기 (0 = 설정값)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "결과를 스냅샷 저장소에 저장")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "JSON으로 출력")
}

func screenerNames() []string {
	names := make([]string, len(contracts.AllScreeners))
	for i, id := range contracts.AllScreeners {
		names[i] = string(id)
	}
	return names
}

func runScan(cmd *cobra.Command, args []string) error {
	id, err := contracts.ParseScreenerID(args[0])
	if err != nil {
		return fmt.Errorf("%w (one of: %s)", err, strings.Join(screenerNames(), ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var report *contracts.Report
	if scanBatch > 0 {
		universe, err := a.collector.Universe(ctx)
		if err != nil {
			return err
		}
		batch := a.screens.Batches.For(id)
		batch.Size = scanBatch
		report, err = a.collector.RunWith(ctx, id, universe, batch)
		if err != nil {
			return fmt.Errorf("run %s: %w", id, err)
		}
	} else {
		report, err = a.collector.Run(ctx, id)
		if err != nil {
			return fmt.Errorf("run %s: %w", id, err)
		}
	}

	a.collector.AttachQuotes(ctx, report)

	if scanSave {
		if err := a.collector.Persist(ctx, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	PrintReport(out, report, scanLimit)
	if scanSave {
		PrintSuccess(out, fmt.Sprintf("Snapshot saved (%s backend)", a.cfg.Snapshot.Backend))
	}
	return nil
}
