package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/api"
	"github.com/wonny/salesdesk/backend/internal/api/handlers"
	"github.com/wonny/salesdesk/backend/internal/ingest"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 판매 파일 업로드 엔드포인트 제공
- 리포트 조회 엔드포인트 제공
- 리포트 캐시 갱신 스케줄러 실행 (SCHEDULER_ENABLED)

Endpoints:
  GET  /health              - Health check
  POST /upload              - 판매 파일 업로드 (multipart field "file")
  GET  /reports             - 리포트 목록
  GET  /reports/{name}      - 리포트 조회 (?version=&top_n=&sort_by=)

Example:
  go run ./cmd/salesctl api
  go run ./cmd/salesctl api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Salesdesk API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	defer logger.CloseFiles()

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"storage": cfg.Storage.Backend,
	}).Info("Initializing API server")

	ctx := context.Background()

	// 3. Open dataset store
	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Create services
	reports, redisClient, err := newReports(cfg, s, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ingestor := ingest.NewIngestor(s, cfg.Storage.ExportsDir, log)

	// 5. Create handlers and router
	uploadHandler := handlers.NewUploadHandler(ingestor, reports, cfg.Upload.MaxBytes, log)
	reportHandler := handlers.NewReportHandler(reports, log)
	limiter := api.NewUploadLimiter(cfg.Upload.RateLimit, redisClient, log)

	router := api.NewRouter(uploadHandler, reportHandler, limiter, log)

	// 6. Create server
	server := api.New(cfg, log, router)

	// 7. Start scheduler
	if cfg.Scheduler.Enabled {
		sched, err := newScheduler(cfg, reports, log)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"POST /upload",
		"GET  /reports",
		"GET  /reports/{name}",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
