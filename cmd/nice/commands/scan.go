package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/evidence"
	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/external/naver"
	"github.com/wonny/nice/internal/flowsource"
	"github.com/wonny/nice/internal/regime"
	"github.com/wonny/nice/internal/scanner"
	"github.com/wonny/nice/internal/signalstore"
	"github.com/wonny/nice/internal/theme"
	"github.com/wonny/nice/internal/universe"
	"github.com/wonny/nice/pkg/httputil"
	"github.com/wonny/nice/pkg/redis"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "유니버스 전체 스캔 실행",
	Long: `활성 유니버스 종목 전체에 L0~L4 게이트 파이프라인을 적용합니다.

통과한 종목은 점수 내림차순으로 정렬되어 당일 신호 테이블을
교체하고, 종목별 증거 패킷이 파일로 남습니다.

Example:
  go run ./cmd/nice scan
  go run ./cmd/nice scan --mode vcp_only --limit 200`,
	RunE: runScan,
}

var (
	scanMode  string
	scanLimit int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanMode, "mode", "", "strategy mode override (vcp_only|flow_only|vcp_flow|vcp_flow_macro|full_ai)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "cap the universe to the N largest names (0 = no cap)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if scanMode != "" {
		cfg.Scan.StrategyMode = scanMode
		if err := cfg.Scan.Validate(); err != nil {
			return err
		}
	}

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

	sc := scanner.New(scanner.Deps{
		MarketData: naverClient,
		Regime:     regime.NewSource(krxClient, cache, log),
		Flow:       flowsource.NewSource(naverClient, cache, log),
		Universe:   universe.NewRepository(db.Pool, scanLimit),
		Themes:     themes,
		Store:      signalstore.NewRepository(db.Pool),
		Ledger:     evidence.NewLedger(store, log),
	}, cfg.Scan, log)

	PrintHeader(fmt.Sprintf("NICE Scan (%s)", cfg.Scan.StrategyMode))
	started := time.Now()

	signals, err := sc.Run(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Scan failed: %v", err))
		return err
	}

	elapsed := time.Since(started).Seconds()
	if len(signals) == 0 {
		PrintWarning(fmt.Sprintf("No signals today (%.1fs)", elapsed))
		return nil
	}

	fmt.Println()
	columns := []string{"#", "Ticker", "Name", "Theme", "Score", "Entry", "Stop", "TP1", "R:R"}
	widths := []int{3, 8, 16, 10, 5, 9, 9, 9, 5}
	PrintTableHeader(columns, widths)
	for i, s := range signals {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			s.Ticker,
			truncate(s.Name, 16),
			truncate(s.Theme, 10),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Plan.EntryPrice),
			fmt.Sprintf("%d", s.Plan.StopLoss),
			fmt.Sprintf("%d", s.Plan.TakeProfit1),
			fmt.Sprintf("%.2f", s.Plan.RiskRewardRatio),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d signals in %.1fs", len(signals), elapsed))
	return nil
}

// truncate clips a display string to keep table columns aligned
func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
