package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/database"
)

// versionsCmd represents the versions command
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "저장된 데이터셋 버전 목록 (postgres)",
	Long: `PostgreSQL 저장소의 데이터셋 버전을 최신순으로 표시합니다.

Example:
  go run ./cmd/salesctl versions --limit 20`,
	RunE: runVersions,
}

var (
	versionsLimit int
)

func init() {
	rootCmd.AddCommand(versionsCmd)

	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 10, "표시할 버전 수")
}

func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Backend != config.StoragePostgres {
		return fmt.Errorf("versions requires STORAGE_BACKEND=%s", config.StoragePostgres)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	versions, err := store.NewPostgresStore(db.Pool).Versions(ctx, versionsLimit)
	if err != nil {
		return err
	}

	if len(versions) == 0 {
		PrintInfo("No versions stored yet")
		return nil
	}

	widths := []int{32, 19, 8, 8, 24}
	PrintTableHeader([]string{"VERSION", "CREATED", "ROWS", "WARN", "SOURCE"}, widths)
	for _, v := range versions {
		PrintTableRow([]string{
			v.ID,
			v.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", v.Rows),
			fmt.Sprintf("%d", len(v.Warnings)),
			v.Source,
		}, widths)
	}

	return nil
}
