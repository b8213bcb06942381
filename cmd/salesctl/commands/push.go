package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/api/handlers"
	"github.com/wonny/salesdesk/backend/pkg/httputil"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// pushCmd represents the push command
var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "실행 중인 API 서버로 파일 업로드",
	Long: `판매 파일을 실행 중인 API 서버의 POST /upload 로 전송합니다.

업로드는 매번 새 버전을 만들기 때문에 재시도하지 않습니다.

Example:
  go run ./cmd/salesctl push ./vendas.csv --server http://localhost:8089`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

var (
	pushServer string
)

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushServer, "server", "http://localhost:8089", "API 서버 주소")
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	defer logger.CloseFiles()

	client := httputil.New(log).DisableRetry()
	resp, err := client.PostFile(context.Background(), strings.TrimRight(pushServer, "/")+"/upload", "file", args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	var res handlers.UploadResponse
	if err := httputil.DecodeJSON(resp, &res); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			PrintError(fmt.Sprintf("server returned %d: %s", statusErr.StatusCode, statusErr.Body))
		} else {
			PrintError(err.Error())
		}
		return err
	}

	PrintSuccess(fmt.Sprintf("Uploaded %s", args[0]))
	PrintKeyValue("Version", res.Version, 8)
	PrintKeyValue("Rows", fmt.Sprintf("%d", res.Rows), 8)
	if len(res.Warnings) > 0 {
		PrintWarning(fmt.Sprintf("%d validation warnings", len(res.Warnings)))
		PrintList(res.Warnings)
	}
	return nil
}
