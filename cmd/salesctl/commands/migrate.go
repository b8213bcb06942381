package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "PostgreSQL 스키마 생성",
	Long: `sales 스키마와 dataset_versions, transactions 테이블을 생성합니다.
이미 존재하는 객체는 건너뜁니다.

Example:
  go run ./cmd/salesctl migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	defer db.Close()

	if err := store.NewPostgresStore(db.Pool).Migrate(ctx); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Schema is up to date")
	return nil
}
