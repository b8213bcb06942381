package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/reporting"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/httputil"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [name]",
	Short: "리포트 조회",
	Long: `리포트를 계산하거나 실행 중인 API 서버에서 가져옵니다.

Reports:
  sales-summary, regional-performance, product-analysis,
  customer-profile, financial-metrics

--snapshot 은 업로드 시점에 저장된 report_<version>.json 을 읽습니다
(sales-summary 전용).

Example:
  go run ./cmd/salesctl report sales-summary
  go run ./cmd/salesctl report product-analysis --top-n 5 --sort-by units_sold
  go run ./cmd/salesctl report financial-metrics --server http://localhost:8089
  go run ./cmd/salesctl report sales-summary --snapshot --version <id>`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportVersion  string
	reportTopN     int
	reportSortBy   string
	reportServer   string
	reportSnapshot bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportVersion, "version", "", "데이터셋 버전 (기본: 최신)")
	reportCmd.Flags().IntVar(&reportTopN, "top-n", 0, "상품 수 (product-analysis)")
	reportCmd.Flags().StringVar(&reportSortBy, "sort-by", "", "정렬 기준: amount_collected|units_sold|product_name")
	reportCmd.Flags().StringVar(&reportServer, "server", "", "API 서버 주소 (예: http://localhost:8089)")
	reportCmd.Flags().BoolVar(&reportSnapshot, "snapshot", false, "저장된 요약 스냅샷 읽기")
}

func runReport(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	defer logger.CloseFiles()

	ctx := context.Background()
	params := reporting.Params{TopN: reportTopN, SortBy: reportSortBy}

	var report interface{}
	switch {
	case reportSnapshot:
		if name != reporting.ReportSalesSummary {
			return fmt.Errorf("--snapshot is only available for %s", reporting.ReportSalesSummary)
		}
		if reportVersion == "" {
			return fmt.Errorf("--snapshot requires --version")
		}
		report, err = store.ReadSnapshot(cfg.Storage.ExportsDir, reportVersion)

	case reportServer != "":
		var remote map[string]interface{}
		err = httputil.New(log).GetJSON(ctx, reportURL(reportServer, name, reportVersion, params), &remote)
		report = remote

	default:
		report, err = buildLocalReport(ctx, cfg, name, params, log)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	return printJSON(report)
}

func buildLocalReport(ctx context.Context, cfg *config.Config, name string, params reporting.Params, log *logger.Logger) (interface{}, error) {
	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	reports, redisClient, err := newReports(cfg, s, log)
	if err != nil {
		return nil, err
	}
	defer redisClient.Close()

	return reports.Build(ctx, name, reportVersion, params)
}

// reportURL builds GET /reports/{name} with the optional query parameters
func reportURL(server, name, version string, p reporting.Params) string {
	q := url.Values{}
	if version != "" {
		q.Set("version", version)
	}
	if p.TopN > 0 {
		q.Set("top_n", strconv.Itoa(p.TopN))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}

	u := strings.TrimRight(server, "/") + "/reports/" + url.PathEscape(name)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
