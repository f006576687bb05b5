package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/universe"
	"github.com/wonny/nice/pkg/httputil"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "스캔 유니버스 관리",
	Long: `스캔 대상 유니버스(scan.universe)를 관리합니다.

Example:
  go run ./cmd/nice universe sync
  go run ./cmd/nice universe list --limit 30`,
}

var (
	universeSyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "KRX 상장 목록으로 유니버스 갱신",
		Long: `KOSPI/KOSDAQ 전 종목 상장 현황을 받아 유니버스를 갱신합니다.

목록에서 빠진 종목은 비활성화만 되고 삭제되지 않습니다.

Example:
  go run ./cmd/nice universe sync`,
		RunE: runUniverseSync,
	}

	universeListCmd = &cobra.Command{
		Use:   "list",
		Short: "활성 유니버스 조회",
		RunE:  runUniverseList,
	}
)

var universeListLimit int

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeSyncCmd)
	universeCmd.AddCommand(universeListCmd)

	universeListCmd.Flags().IntVar(&universeListLimit, "limit", 30, "rows to show (0 = all)")
}

func runUniverseSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	krxClient := krx.NewClient(httputil.New(log), log)

	PrintHeader("Universe Sync")
	started := time.Now()

	instruments, err := krxClient.FetchAllListings(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Fetch listings failed: %v", err))
		return err
	}
	fmt.Printf("   Fetched %d listed instruments\n", len(instruments))

	repo := universe.NewRepository(db.Pool, 0)
	if err := repo.SaveInstruments(ctx, instruments); err != nil {
		PrintError(fmt.Sprintf("Save universe failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Universe synced: %d instruments in %.1fs", len(instruments), time.Since(started).Seconds()))
	return nil
}

func runUniverseList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, _, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := universe.NewRepository(db.Pool, universeListLimit)
	instruments, err := repo.ListInstruments(ctx)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Active Universe (%d)", len(instruments)))
	columns := []string{"Ticker", "Name", "Market", "Cap(십억)"}
	widths := []int{8, 20, 7, 10}
	PrintTableHeader(columns, widths)
	for _, inst := range instruments {
		PrintTableRow([]string{
			inst.Ticker,
			truncate(inst.Name, 20),
			inst.Market,
			fmt.Sprintf("%.0f", inst.MarketCap),
		}, widths)
	}
	return nil
}
