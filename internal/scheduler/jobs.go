package scheduler

import (
	"context"
	"fmt"

	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/scanner"
	"github.com/wonny/nice/internal/universe"
	"github.com/wonny/nice/pkg/logger"
)

// ScanJob runs the gate-pipeline scan after the KRX close
type ScanJob struct {
	scanner *scanner.Scanner
	logger  *logger.Logger
}

// NewScanJob creates the daily scan job
func NewScanJob(sc *scanner.Scanner, log *logger.Logger) *ScanJob {
	return &ScanJob{scanner: sc, logger: log}
}

func (j *ScanJob) Name() string { return "signal_scan" }

// Schedule runs weekdays at 16:20 KST, after prices and investor
// flows for the session have settled
func (j *ScanJob) Schedule() string { return "0 20 16 * * 1-5" }

func (j *ScanJob) Run(ctx context.Context) error {
	signals, err := j.scanner.Run(ctx)
	if err != nil {
		return fmt.Errorf("scheduled scan: %w", err)
	}
	j.logger.WithField("signals", len(signals)).Info("Scheduled scan finished")
	return nil
}

// UniverseSyncJob refreshes the scan universe from KRX listings
type UniverseSyncJob struct {
	krx    *krx.Client
	repo   *universe.Repository
	logger *logger.Logger
}

// NewUniverseSyncJob creates the daily universe refresh job
func NewUniverseSyncJob(krxClient *krx.Client, repo *universe.Repository, log *logger.Logger) *UniverseSyncJob {
	return &UniverseSyncJob{krx: krxClient, repo: repo, logger: log}
}

func (j *UniverseSyncJob) Name() string { return "universe_sync" }

// Schedule runs weekdays at 16:00 KST, before the scan job
func (j *UniverseSyncJob) Schedule() string { return "0 0 16 * * 1-5" }

func (j *UniverseSyncJob) Run(ctx context.Context) error {
	instruments, err := j.krx.FetchAllListings(ctx)
	if err != nil {
		return fmt.Errorf("fetch listings: %w", err)
	}
	if err := j.repo.SaveInstruments(ctx, instruments); err != nil {
		return fmt.Errorf("save universe: %w", err)
	}
	j.logger.WithField("instruments", len(instruments)).Info("Universe synced")
	return nil
}
