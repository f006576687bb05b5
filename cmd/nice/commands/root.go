package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/pkg/config"
	"github.com/wonny/nice/pkg/database"
	"github.com/wonny/nice/pkg/logger"
)

var (
	// Global flags
	envName string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nice",
	Short: "NICE - 한국 주식 VCP 스캐너",
	Long: `NICE Scanner CLI

KOSPI/KOSDAQ 유니버스를 대상으로 L0~L4 게이트 파이프라인을 돌려
매수 후보를 선별하고, 각 신호에 대한 주문 계획과 증거 패킷을 남깁니다.

Usage:
  go run ./cmd/nice [command]

Examples:
  go run ./cmd/nice scan
  go run ./cmd/nice regime
  go run ./cmd/nice universe sync
  go run ./cmd/nice plan 005930 71200`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initDeps loads config and opens the shared infrastructure handles.
// 커맨드마다 동일한 부팅 순서를 쓰도록 여기로 모음.
func initDeps() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if envName != "" {
		cfg.Env = envName
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return cfg, log, db, nil
}
