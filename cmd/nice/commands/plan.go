package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/plan"
	"github.com/wonny/nice/pkg/config"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan TICKER PRICE",
	Short: "단일 종목 주문 계획 계산",
	Long: `현재가 기준의 진입/손절/익절 주문 계획을 계산합니다.

스캔을 거치지 않고 거래 규칙만 단독으로 확인할 때 사용합니다.
모든 가격은 KRX 호가 단위로 반올림됩니다.

Example:
  go run ./cmd/nice plan 005930 71200
  go run ./cmd/nice plan 005930 71200 --pivot 68500`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

var planPivot int64

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Int64Var(&planPivot, "pivot", 0, "contraction base low for the stop loss (0 = fixed percent stop)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ticker := args[0]
	price, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || price <= 0 {
		return fmt.Errorf("PRICE must be a positive integer, got %q", args[1])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p := plan.NewBuilder(cfg.Scan.TradeRule).BuildBuyPlan(ticker, price, planPivot, time.Now())

	PrintHeader(fmt.Sprintf("Order Plan: %s", ticker))
	PrintKeyValue("Action", p.Action, 12)
	PrintKeyValue("Entry", fmt.Sprintf("%d KRW", p.EntryPrice), 12)
	PrintKeyValue("Stop Loss", fmt.Sprintf("%d KRW", p.StopLoss), 12)
	PrintKeyValue("TP1", fmt.Sprintf("%d KRW", p.TakeProfit1), 12)
	PrintKeyValue("TP2", fmt.Sprintf("%d KRW", p.TakeProfit2), 12)
	PrintKeyValue("Quantity", fmt.Sprintf("%d", p.Quantity), 12)
	PrintKeyValue("Time Stop", p.TimeStopDate, 12)
	PrintKeyValue("R:R", fmt.Sprintf("%.2f", p.RiskRewardRatio), 12)
	return nil
}
