package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/internal/signalstore"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "신호 조회 및 상태 변경",
	Long: `스캔이 남긴 신호를 조회하거나 상태를 바꿉니다.

Example:
  go run ./cmd/nice signals list
  go run ./cmd/nice signals close 005930 --date 2025-06-02`,
}

var (
	signalsListCmd = &cobra.Command{
		Use:   "list",
		Short: "미청산(OPEN) 신호 목록",
		RunE:  runSignalsList,
	}

	signalsCloseCmd = &cobra.Command{
		Use:   "close TICKER",
		Short: "신호를 CLOSED로 전환",
		Args:  cobra.ExactArgs(1),
		RunE:  runSignalsClose,
	}
)

var signalsCloseDate string

func init() {
	rootCmd.AddCommand(signalsCmd)
	signalsCmd.AddCommand(signalsListCmd)
	signalsCmd.AddCommand(signalsCloseCmd)

	signalsCloseCmd.Flags().StringVar(&signalsCloseDate, "date", "", "signal date (YYYY-MM-DD, required)")
	_ = signalsCloseCmd.MarkFlagRequired("date")
}

func runSignalsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, _, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	signals, err := signalstore.NewRepository(db.Pool).LoadOpen(ctx)
	if err != nil {
		return err
	}

	if len(signals) == 0 {
		PrintInfo("No open signals")
		return nil
	}

	PrintHeader(fmt.Sprintf("Open Signals (%d)", len(signals)))
	columns := []string{"Date", "Ticker", "Name", "Theme", "Score", "Entry", "Stop", "Setup"}
	widths := []int{10, 8, 16, 10, 5, 9, 9, 10}
	PrintTableHeader(columns, widths)
	for _, s := range signals {
		PrintTableRow([]string{
			s.SignalDate,
			s.Ticker,
			truncate(s.Name, 16),
			truncate(s.Theme, 10),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Plan.EntryPrice),
			fmt.Sprintf("%d", s.Plan.StopLoss),
			setupLabel(s),
		}, widths)
	}
	return nil
}

func runSignalsClose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ticker := strings.TrimSpace(args[0])

	_, _, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := signalstore.NewRepository(db.Pool)
	if err := repo.UpdateStatus(ctx, ticker, signalsCloseDate, contracts.StatusClosed); err != nil {
		PrintError(fmt.Sprintf("Close signal failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Signal %s (%s) closed", ticker, signalsCloseDate))
	return nil
}

func setupLabel(s contracts.Signal) string {
	switch {
	case s.IsPalantir:
		return "Palantir"
	case s.IsMini:
		return "Mini"
	default:
		return "VCP"
	}
}
