package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salesdesk/backend/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Salesdesk - 판매 데이터 수집 및 리포트",
	Long: `Salesdesk Unified CLI

판매 거래 파일(CSV/XLS/XLSX)을 검증·정규화하여 버전별로 저장하고
매출, 지역, 상품, 고객, 재무 리포트를 제공합니다.

Usage:
  go run ./cmd/salesctl [command]

Examples:
  go run ./cmd/salesctl api
  go run ./cmd/salesctl ingest ./vendas.csv
  go run ./cmd/salesctl report sales-summary
  go run ./cmd/salesctl push ./vendas.xlsx --server http://localhost:8089`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	if env != "" {
		os.Setenv("ENV", env)
	}

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
