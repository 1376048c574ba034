package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	screenerConfig string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Equity screener - Magic Formula, Piotroski, Value Scan, CANSLIM",
	Long: `Equity Screener CLI

FMP 재무 데이터로 유니버스를 가져와 네 가지 전략으로 종목을 선별합니다.
결과는 스냅샷 저장소(file, redis, postgres)에 저장되고 API로 제공됩니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener scan magic_formula
  go run ./cmd/screener scan canslim --limit 20 --save
  go run ./cmd/screener daily
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start
  go run ./cmd/screener config check config/screeners.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&screenerConfig, "screeners", "", "screener thresholds YAML (default: SCREENER_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
