package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/ingest"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "판매 파일 수집 (로컬)",
	Long: `판매 파일을 검증·정규화하여 설정된 저장소에 새 버전으로 저장합니다.

지원 형식: .csv, .xls, .xlsx
postgres 저장소는 실행 중인 API 서버와 공유되지만 memory 저장소는
이 프로세스 안에서만 유효합니다.

Example:
  go run ./cmd/salesctl ingest ./vendas.csv
  STORAGE_BACKEND=postgres go run ./cmd/salesctl ingest ./vendas.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	defer logger.CloseFiles()

	ctx := context.Background()

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	start := time.Now()
	res, err := ingest.NewIngestor(s, cfg.Storage.ExportsDir, log).IngestFile(ctx, args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  Ingestion")
	PrintSeparator()
	PrintKeyValue("Version", res.Version, 12)
	PrintKeyValue("Rows", fmt.Sprintf("%d", res.Rows), 12)
	PrintKeyValue("Revenue", formatMoney(res.Summary.Revenue), 12)
	PrintKeyValue("Cost method", string(res.CostMethod), 12)
	PrintSeparator()

	if len(res.Warnings) > 0 {
		PrintWarning(fmt.Sprintf("%d validation warnings", len(res.Warnings)))
		PrintList(res.Warnings)
		fmt.Println()
	}

	PrintSuccess(fmt.Sprintf("Stored in %.2fs", time.Since(start).Seconds()))
	return nil
}
