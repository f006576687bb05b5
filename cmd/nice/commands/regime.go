package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/regime"
	"github.com/wonny/nice/pkg/config"
	"github.com/wonny/nice/pkg/httputil"
	"github.com/wonny/nice/pkg/logger"
	"github.com/wonny/nice/pkg/redis"
)

// regimeCmd represents the regime command
var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "시장 레짐 스냅샷 조회",
	Long: `KOSPI/KOSDAQ 지수 상태로 계산한 시장 레짐 점수를 출력합니다.

점수가 게이트 하한(기본 30) 아래면 vcp_flow_macro / full_ai 모드의
스캔은 전부 차단됩니다.

Example:
  go run ./cmd/nice regime`,
	RunE: runRegime,
}

func init() {
	rootCmd.AddCommand(regimeCmd)
}

func runRegime(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// DB가 필요 없는 커맨드라 initDeps를 거치지 않음
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	httpClient := httputil.New(log)
	source := regime.NewSource(krx.NewClient(httpClient, log), redis.NewCache(redisClient, "nice"), log)

	snap, err := source.GetSnapshot(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Fetch regime failed: %v", err))
		return err
	}

	PrintHeader("Market Regime")
	statusIcon := "🟡"
	switch snap.Status {
	case "BULLISH":
		statusIcon = "🟢"
	case "BEARISH":
		statusIcon = "🔴"
	}
	PrintKeyValue("Status", fmt.Sprintf("%s %s", statusIcon, snap.Status), 14)
	PrintKeyValue("Gate Score", fmt.Sprintf("%d / 100", snap.GateScore), 14)
	PrintKeyValue("Recommendation", snap.Recommendation, 14)
	PrintSeparator()
	PrintKeyValue("KOSPI", fmt.Sprintf("%.2f (%+.2f%%)", snap.KospiValue, snap.KospiChangePct), 14)
	PrintKeyValue("KOSDAQ", fmt.Sprintf("%.2f (%+.2f%%)", snap.KosdaqValue, snap.KosdaqChange), 14)
	if snap.ForeignNet != 0 {
		PrintKeyValue("Foreign Net", fmt.Sprintf("%.0f", snap.ForeignNet), 14)
	}
	PrintKeyValue("Generated At", snap.GeneratedAt, 14)

	if snap.GateScore < cfg.Scan.RegimeFloor {
		PrintWarning(fmt.Sprintf("Regime score below gate floor (%d): macro-gated scans are blocked", cfg.Scan.RegimeFloor))
	}
	return nil
}
