package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/internal/evidence"
	"github.com/wonny/nice/internal/gates"
	"github.com/wonny/nice/internal/plan"
	"github.com/wonny/nice/pkg/config"
	"github.com/wonny/nice/pkg/logger"
)

// 히스토리 조회 구간: 120일봉 확보를 위한 달력일 여유
const historyCalendarDays = 210

// Scanner orchestrates one scan cycle: fan out per-instrument tasks
// over a bounded worker pool, run the gate pipeline on each, build
// plans and evidence for qualifiers, then fan in and persist the
// ranked signal set in one shot.
// ⭐ SSOT: 스캔 오케스트레이션은 이 패키지에서만
type Scanner struct {
	marketData contracts.MarketDataProvider
	regime     contracts.RegimeSource
	flow       contracts.FlowSource
	universe   contracts.UniverseSource
	themes     contracts.ThemeSource
	store      contracts.SignalStore
	ledger     *evidence.Ledger

	chain   *gates.Chain
	builder *plan.Builder
	cfg     config.ScanConfig
	logger  *logger.Logger
	now     func() time.Time
}

// Deps bundles the external sources a Scanner consumes
type Deps struct {
	MarketData contracts.MarketDataProvider
	Regime     contracts.RegimeSource
	Flow       contracts.FlowSource
	Universe   contracts.UniverseSource
	Themes     contracts.ThemeSource
	Store      contracts.SignalStore
	Ledger     *evidence.Ledger
}

// New creates a Scanner wired from scan configuration
func New(deps Deps, cfg config.ScanConfig, log *logger.Logger) *Scanner {
	return &Scanner{
		marketData: deps.MarketData,
		regime:     deps.Regime,
		flow:       deps.Flow,
		universe:   deps.Universe,
		themes:     deps.Themes,
		store:      deps.Store,
		ledger:     deps.Ledger,
		chain:      gates.NewChain(cfg),
		builder:    plan.NewBuilder(cfg.TradeRule),
		cfg:        cfg,
		logger:     log.WithField("module", "scanner"),
		now:        time.Now,
	}
}

// Run executes one full scan cycle and returns the persisted signals,
// sorted by composite score descending. Persistence is all-or-nothing:
// a cancelled cycle discards partial results instead of writing them.
func (s *Scanner) Run(ctx context.Context) ([]contracts.Signal, error) {
	start := s.now()

	regimeScore := s.fetchRegimeScore(ctx)

	instruments, err := s.universe.ListInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"instruments": len(instruments),
		"workers":     s.cfg.Workers,
		"mode":        s.cfg.StrategyMode,
		"regime":      regimeScore,
	}).Info("Starting scan cycle")

	// Worker pool: fan out instruments, fan in optional signals
	instCh := make(chan contracts.Instrument, len(instruments))
	resultCh := make(chan *contracts.Signal, len(instruments))

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.scanWorker(ctx, workerID, regimeScore, instCh, resultCh)
		}(i)
	}

	for _, inst := range instruments {
		instCh <- inst
	}
	close(instCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	signals := make([]contracts.Signal, 0, len(instruments))
	for res := range resultCh {
		if res != nil {
			signals = append(signals, *res)
		}
	}

	// 중간 취소된 사이클은 부분 결과를 버린다
	if err := ctx.Err(); err != nil {
		s.logger.WithField("partial", len(signals)).Warn("Scan cancelled, discarding partial results")
		return nil, err
	}

	// 도착 순서를 버리고 점수순으로 재정렬
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	if err := s.store.ReplaceAll(ctx, start, signals); err != nil {
		return nil, fmt.Errorf("persist signals: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"signals":  len(signals),
		"duration": s.now().Sub(start).String(),
	}).Info("Scan cycle completed")

	return signals, nil
}

// fetchRegimeScore asks the regime source, falling back to neutral 50
// when market data is unavailable. A data outage must not kill the scan.
func (s *Scanner) fetchRegimeScore(ctx context.Context) int {
	score, err := s.regime.GetRegimeScore(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Regime source failed, assuming neutral")
		return 50
	}
	return score
}

// scanWorker drains the instrument channel. Each task is isolated:
// a failure or panic skips that instrument only.
func (s *Scanner) scanWorker(ctx context.Context, workerID, regimeScore int, instCh <-chan contracts.Instrument, resultCh chan<- *contracts.Signal) {
	for inst := range instCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resultCh <- s.processInstrument(ctx, workerID, inst, regimeScore)
	}
}

// processInstrument runs fetch, gates, plan and evidence for one
// instrument. Returns nil when the instrument produces no signal.
func (s *Scanner) processInstrument(ctx context.Context, workerID int, inst contracts.Instrument, regimeScore int) (signal *contracts.Signal) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": inst.Ticker,
				"panic":  fmt.Sprint(r),
			}).Error("Scan task panicked")
			signal = nil
		}
	}()

	now := s.now()
	history, err := s.marketData.GetHistory(ctx, inst.Ticker, now.AddDate(0, 0, -historyCalendarDays), now)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": inst.Ticker,
		}).Debug("Failed to fetch history, skipping")
		return nil
	}
	if history.Len() == 0 {
		return nil
	}

	c := &contracts.Candidate{
		Instrument: inst,
		Theme:      s.themes.GetTag(inst.Ticker),
		History:    history,
	}

	if s.chain.Mode.UsesVCP() {
		c.VCP = gates.DetectVCP(inst.Ticker, history, now)
	}

	c.Flow = s.fetchFlow(ctx, c)
	c.RegimeScore = regimeScore

	if !s.chain.Run(c) {
		return nil
	}

	// TODO: derive a risk pivot from the contraction base low
	currentPrice := history.Last().Close
	orderPlan := s.builder.BuildBuyPlan(inst.Ticker, currentPrice, 0, now)

	s.ledger.Record(ctx, inst.Ticker, c.Gates, &orderPlan, c.FinalScore)

	tech := c.Gates[gates.NameTechnical]
	techDetails, _ := tech.Details.(contracts.TechnicalDetails)

	s.logger.WithFields(map[string]interface{}{
		"ticker": inst.Ticker,
		"name":   inst.Name,
		"theme":  c.Theme,
		"score":  c.FinalScore,
	}).Info("Signal found")

	return &contracts.Signal{
		Ticker:       inst.Ticker,
		Name:         inst.Name,
		Market:       inst.Market,
		Sector:       inst.Sector,
		Theme:        c.Theme,
		StrategyMode: s.cfg.StrategyMode,
		Score:        c.FinalScore,
		TechScore:    tech.Score,
		IsPalantir:   techDetails.IsPalantir,
		IsMini:       techDetails.IsPalantirMini,
		CurrentPrice: currentPrice,
		Plan:         orderPlan,
		Status:       contracts.StatusOpen,
		SignalDate:   now.Format("2006-01-02"),
	}
}

// fetchFlow asks the flow source, falling back to the contraction
// proxy estimate when real investor data is unavailable.
func (s *Scanner) fetchFlow(ctx context.Context, c *contracts.Candidate) contracts.FlowMetrics {
	flow, err := s.flow.GetFlowMetrics(ctx, c.Ticker, c.History)
	if err == nil {
		return flow
	}

	if c.VCP != nil {
		return contracts.FlowMetrics{
			ForeignNet5D: c.VCP.Foreign5D,
			InstNet5D:    c.VCP.Inst5D,
			IsProxy:      true,
		}
	}
	return contracts.FlowMetrics{}
}
