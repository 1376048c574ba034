package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/database"
	"github.com/wonny/screener/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "스냅샷 및 인프라 상태 확인",
	Long: `저장된 스냅샷과 연결 상태를 표시합니다.

표시 정보:
- 스크리너별 최신 스냅샷 (실행 시각, 결과 수, outcome)
- PostgreSQL 연결 풀 상태 (DATABASE_URL 설정 시)
- Redis 연결 상태 (REDIS_ENABLED=true 시)

Example:
  go run ./cmd/screener status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, doubleRule)
	fmt.Fprintf(out, "  Snapshots (%s backend)\n", a.cfg.Snapshot.Backend)
	fmt.Fprintln(out, singleRule)
	for _, id := range contracts.AllScreeners {
		r, err := a.store.Latest(ctx, id)
		PrintKeyValue(out, string(id), describeSnapshot(r, err), 14)
	}

	if a.cfg.Database.URL != "" {
		fmt.Fprintln(out, singleRule)
		checkDatabase(ctx, out, a)
	}

	if a.cfg.Redis.Enabled {
		fmt.Fprintln(out, singleRule)
		checkRedis(ctx, out, a)
	}

	fmt.Fprintln(out, doubleRule)
	return nil
}

func describeSnapshot(r *contracts.Report, err error) string {
	switch {
	case err != nil:
		return "error: " + err.Error()
	case r == nil:
		return "never run"
	default:
		return fmt.Sprintf("%s, %d results (%s), config %s",
			r.GeneratedAt.Format("2006-01-02 15:04"), r.Len(), r.Outcome, shortHash(r.ConfigHash))
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

func checkDatabase(ctx context.Context, out io.Writer, a *app) {
	db, err := database.New(ctx, a.cfg)
	if err != nil {
		PrintError(out, fmt.Sprintf("PostgreSQL: %v", err))
		return
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		PrintError(out, fmt.Sprintf("PostgreSQL: %v", err))
		return
	}

	PrintSuccess(out, fmt.Sprintf("PostgreSQL healthy (%s)", health.ResponseTime.Round(time.Microsecond)))
	PrintKeyValue(out, "Total conns", fmt.Sprint(health.Stats.TotalConns), 14)
	PrintKeyValue(out, "Idle conns", fmt.Sprint(health.Stats.IdleConns), 14)
	PrintKeyValue(out, "Max conns", fmt.Sprint(health.Stats.MaxConns), 14)
}

func checkRedis(ctx context.Context, out io.Writer, a *app) {
	client, err := redis.New(ctx, a.cfg)
	if err != nil {
		PrintError(out, fmt.Sprintf("Redis: %v", err))
		return
	}
	defer client.Close()

	PrintSuccess(out, fmt.Sprintf("Redis reachable (%s:%s)", a.cfg.Redis.Host, a.cfg.Redis.Port))
}
