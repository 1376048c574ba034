package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// dailyCmd represents the daily command
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "일일 스크리닝 1회 실행",
	Long: `스케줄러의 daily_screen 작업을 즉시 1회 실행합니다.

유니버스를 한 번만 가져와서 magic_formula, value_scan, piotroski를
daily 배치 크기로 실행하고, 시세를 붙여 상위 N개를 스냅샷으로 저장합니다.

Example:
  go run ./cmd/screener daily
  go run ./cmd/screener daily --limit 10`,
	RunE: runDaily,
}

var dailyLimit int

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().IntVar(&dailyLimit, "limit", 10, "스크리너별 출력 종목 수 (0 = 전체)")
}

func runDaily(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := a.collector.RunDaily(ctx)
	if err != nil {
		return fmt.Errorf("daily screening: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range reports {
		PrintReport(out, r, dailyLimit)
	}
	PrintSuccess(out, fmt.Sprintf("%d snapshots saved (%s backend)", len(reports), a.cfg.Snapshot.Backend))
	return nil
}
