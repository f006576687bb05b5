package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/evidence"
	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/external/naver"
	"github.com/wonny/nice/internal/flowsource"
	"github.com/wonny/nice/internal/regime"
	"github.com/wonny/nice/internal/scanner"
	"github.com/wonny/nice/internal/scheduler"
	"github.com/wonny/nice/internal/signalstore"
	"github.com/wonny/nice/internal/theme"
	"github.com/wonny/nice/internal/universe"
	"github.com/wonny/nice/pkg/httputil"
	"github.com/wonny/nice/pkg/redis"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 데몬 시작",
	Long: `스케줄러를 띄워 장 마감 후 일과를 자동으로 돌립니다.

- 16:00 KST 평일: KRX 상장 목록으로 유니버스 갱신
- 16:20 KST 평일: 게이트 파이프라인 스캔

SIGINT / SIGTERM을 받으면 진행 중인 작업을 마치고 내려갑니다.

Example:
  go run ./cmd/nice start`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "nice")

	// Naver scraping shares one request budget across processes
	naverHTTP := httputil.New(log).WithRateLimiter(
		redis.NewRateLimiter(redisClient, "nice"),
		redis.RateLimitConfig{Key: "naver", Limit: 10, Window: time.Second},
	)
	naverClient := naver.NewClient(naverHTTP, log)
	krxClient := krx.NewClient(httputil.New(log), log)

	themes, err := theme.Load(cfg.Scan.ThemeFile)
	if err != nil {
		return fmt.Errorf("load theme catalog: %w", err)
	}

	store, err := evidence.NewFileStore(cfg.Scan.EvidenceDir)
	if err != nil {
		return fmt.Errorf("open evidence store: %w", err)
	}

	universeRepo := universe.NewRepository(db.Pool, 0)
	sc := scanner.New(scanner.Deps{
		MarketData: naverClient,
		Regime:     regime.NewSource(krxClient, cache, log),
		Flow:       flowsource.NewSource(naverClient, cache, log),
		Universe:   universeRepo,
		Themes:     themes,
		Store:      signalstore.NewRepository(db.Pool),
		Ledger:     evidence.NewLedger(store, log),
	}, cfg.Scan, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(scheduler.NewUniverseSyncJob(krxClient, universeRepo, log)); err != nil {
		return err
	}
	if err := sched.AddJob(scheduler.NewScanJob(sc, log)); err != nil {
		return err
	}

	sched.Start()
	PrintHeader("NICE Scheduler")
	for _, name := range sched.JobNames() {
		fmt.Printf("   • %s\n", name)
	}
	PrintInfo("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	PrintSuccess("Scheduler stopped")
	return nil
}
