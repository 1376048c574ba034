package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/screenconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "스크리너 설정 관리",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "스크리너 YAML 검증 및 해시 출력",
	Long: `스크리너 임계값 YAML을 검증하고 결과 스냅샷에 기록될 설정 해시를 출력합니다.
경로를 생략하면 내장 기본값을 검사합니다.

Example:
  go run ./cmd/screener config check config/screeners.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	screens, _, err := screenconfig.Load(path)
	if err != nil {
		PrintError(cmd.OutOrStdout(), err.Error())
		return err
	}

	hash, err := screenconfig.Hash(screens)
	if err != nil {
		return fmt.Errorf("hash screener config: %w", err)
	}

	out := cmd.OutOrStdout()
	source := path
	if source == "" {
		source = "built-in defaults"
	}

	PrintKeyValue(out, "Source", source, 14)
	PrintKeyValue(out, "Version", screens.Meta.Version, 14)
	PrintKeyValue(out, "Hash", hash, 14)
	ids := append(append([]contracts.ScreenerID{}, contracts.AllScreeners...), "daily")
	for _, id := range ids {
		b := screens.Batches.For(id)
		PrintKeyValue(out, string(id), fmt.Sprintf("batch %d, delay %s", b.Size, b.Delay), 14)
	}
	PrintKeyValue(out, "Snapshot top", fmt.Sprint(screens.Snapshot.TopN), 14)
	PrintSuccess(out, "Screener config is valid")
	return nil
}
