package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/pkg/config"
)

// evidenceCmd represents the evidence command
var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "증거 패킷 조회",
	Long: `스캔이 남긴 종목별 증거 패킷을 조회합니다.

Example:
  go run ./cmd/nice evidence list
  go run ./cmd/nice evidence list --date 20250602
  go run ./cmd/nice evidence show 20250602/005930_092015`,
}

var (
	evidenceListCmd = &cobra.Command{
		Use:   "list",
		Short: "일자별 패킷 목록",
		RunE:  runEvidenceList,
	}

	evidenceShowCmd = &cobra.Command{
		Use:   "show KEY",
		Short: "패킷 상세 출력",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvidenceShow,
	}
)

var evidenceDate string

// gateView mirrors contracts.GateResult with the details left undecoded
type gateView struct {
	Passed bool   `json:"passed"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceListCmd)
	evidenceCmd.AddCommand(evidenceShowCmd)

	evidenceListCmd.Flags().StringVar(&evidenceDate, "date", "", "day to list (YYYYMMDD, default today)")
}

func runEvidenceList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	day := evidenceDate
	if day == "" {
		day = time.Now().Format("20060102")
	}

	dir := filepath.Join(cfg.Scan.EvidenceDir, day)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			PrintInfo(fmt.Sprintf("No evidence for %s", day))
			return nil
		}
		return fmt.Errorf("read evidence dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			keys = append(keys, day+"/"+name)
		}
	}
	sort.Strings(keys)

	PrintHeader(fmt.Sprintf("Evidence %s (%d packets)", day, len(keys)))
	for _, key := range keys {
		fmt.Printf("   • %s\n", key)
	}
	return nil
}

func runEvidenceShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := filepath.Join(cfg.Scan.EvidenceDir, filepath.FromSlash(args[0])+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read evidence packet: %w", err)
	}

	// Details payloads are gate-specific; keep them raw for display
	var packet struct {
		Timestamp     time.Time            `json:"timestamp"`
		Ticker        string               `json:"ticker"`
		FinalScore    int                  `json:"final_score"`
		Gates         map[string]gateView  `json:"gates"`
		ExecutionPlan *contracts.OrderPlan `json:"execution_plan"`
		Metadata      map[string]string    `json:"metadata"`
	}
	if err := json.Unmarshal(data, &packet); err != nil {
		return fmt.Errorf("decode evidence packet: %w", err)
	}

	PrintHeader(fmt.Sprintf("Evidence: %s", args[0]))
	PrintKeyValue("Ticker", packet.Ticker, 12)
	PrintKeyValue("Timestamp", packet.Timestamp.Format("2006-01-02 15:04:05"), 12)
	PrintKeyValue("Final Score", fmt.Sprintf("%d", packet.FinalScore), 12)
	for k, v := range packet.Metadata {
		PrintKeyValue(k, v, 12)
	}

	PrintSeparator()
	gateNames := make([]string, 0, len(packet.Gates))
	for name := range packet.Gates {
		gateNames = append(gateNames, name)
	}
	sort.Strings(gateNames)
	for _, name := range gateNames {
		g := packet.Gates[name]
		mark := "✅"
		if !g.Passed {
			mark = "❌"
		}
		fmt.Printf("   %s %-13s %3d  %s\n", mark, name, g.Score, g.Reason)
	}

	if packet.ExecutionPlan != nil {
		PrintSeparator()
		p := packet.ExecutionPlan
		PrintKeyValue("Entry", fmt.Sprintf("%d", p.EntryPrice), 12)
		PrintKeyValue("Stop Loss", fmt.Sprintf("%d", p.StopLoss), 12)
		PrintKeyValue("TP1 / TP2", fmt.Sprintf("%d / %d", p.TakeProfit1, p.TakeProfit2), 12)
		PrintKeyValue("Quantity", fmt.Sprintf("%d", p.Quantity), 12)
		PrintKeyValue("Time Stop", p.TimeStopDate, 12)
		PrintKeyValue("R:R", fmt.Sprintf("%.2f", p.RiskRewardRatio), 12)
	}
	return nil
}
