package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/api"
	"github.com/wonny/screener/internal/api/handlers"
	"github.com/wonny/screener/internal/realtime/cache"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 저장된 스냅샷 조회 (JSON, HTML 테이블)
- 온디맨드 스크리너 실행
- 스냅샷 종목의 실시간 시세 WebSocket 스트림

Endpoints:
  GET  /health                     - Health check
  GET  /api/screeners              - 스크리너 목록
  GET  /api/screeners/{id}         - 최신 스냅샷
  POST /api/screeners/{id}/run     - 스크리너 즉시 실행 + 저장
  GET  /screeners/{id}/table       - HTML 결과 테이블
  GET  /ws/quotes/{id}             - 실시간 시세 WebSocket
  GET  /metrics                    - Prometheus metrics

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equity Screener API Server ===")

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log.Module("api")
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// 스트림 여러 개가 같은 종목을 봐도 FMP 요청은 TTL당 1회
	quotes := cache.NewQuoteCache(a.source, a.cfg.QuoteInterval, log)

	h := api.Handlers{
		Screener: handlers.NewScreenerHandler(a.store, a.collector, log),
		Table:    handlers.NewTableHandler(a.store, log),
		Quotes:   handlers.NewQuoteStreamHandler(a.store, quotes, a.cfg.QuoteInterval, log),
	}
	if a.metrics != nil {
		h.Metrics = a.metrics.Handler()
	}

	router := api.NewRouter(h, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
