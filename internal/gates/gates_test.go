package gates

import (
	"testing"
	"time"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/pkg/config"
)

// risingHistory builds n bars of steadily climbing closes with constant
// volume. Highs and lows track the close with a small band.
func risingHistory(n int, start, step, vol int64) contracts.PriceHistory {
	h := make(contracts.PriceHistory, 0, n)
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := start + int64(i)*step
		h = append(h, contracts.PriceBar{
			Date:   day.AddDate(0, 0, i),
			Open:   c - step,
			High:   c + step,
			Low:    c - step*2,
			Close:  c,
			Volume: vol,
		})
	}
	return h
}

// flatHistory builds n identical bars
func flatHistory(n int, close, vol int64) contracts.PriceHistory {
	return risingHistory(n, close, 0, vol)
}

func scanCfg() config.ScanConfig {
	return config.ScanConfig{
		Workers:          20,
		StrategyMode:     "vcp_flow",
		RegimeFloor:      30,
		MinTurnoverKRW:   10_000_000_000,
		MinMarketCapBln:  50,
		ForeignStrongBuy: 5_000_000,
		InstStrongBuy:    3_000_000,
		Weights: config.GateWeights{
			Liquidity: 0.2,
			Technical: 0.4,
			Flow:      0.2,
			Quality:   0.2,
		},
		ScoreThreshold: 50,
		ThemeBonus:     10,
	}
}

func TestRegimeGate(t *testing.T) {
	g := NewRegimeGate(30)

	tests := []struct {
		name       string
		score      int
		wantPass   bool
		wantStatus string
	}{
		{"deep bear fails", 20, false, "BEARISH"},
		{"floor boundary passes", 30, true, "BEARISH"},
		{"neutral passes", 50, true, "NEUTRAL"},
		{"bull passes", 80, true, "BULLISH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Evaluate(&contracts.Candidate{RegimeScore: tt.score})
			if res.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.wantPass)
			}
			if res.Score != tt.score {
				t.Errorf("Score = %d, want %d", res.Score, tt.score)
			}
			d := res.Details.(contracts.RegimeDetails)
			if d.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", d.Status, tt.wantStatus)
			}
		})
	}
}

func TestLiquidityGateInsufficientData(t *testing.T) {
	g := NewLiquidityGate(10_000_000_000)
	res := g.Evaluate(&contracts.Candidate{History: flatHistory(19, 10000, 1_000_000)})

	if res.Passed {
		t.Error("expected fail with fewer than 20 bars")
	}
	if res.Score != 0 || res.Reason != "Insufficient Data" {
		t.Errorf("got score=%d reason=%q", res.Score, res.Reason)
	}
}

func TestLiquidityGateTurnover(t *testing.T) {
	g := NewLiquidityGate(10_000_000_000)

	tests := []struct {
		name      string
		close     int64
		vol       int64
		wantPass  bool
		wantScore int
	}{
		// turnover = vol × close
		{"well above minimum", 10_000, 2_000_000, true, 100},
		{"exactly at minimum", 10_000, 1_000_000, true, 100},
		{"fifth of minimum", 10_000, 200_000, false, 12},
		{"just below minimum", 10_000, 999_999, false, 59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Evaluate(&contracts.Candidate{History: flatHistory(25, tt.close, tt.vol)})
			if res.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.wantPass)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", res.Score, tt.wantScore)
			}
			d := res.Details.(contracts.LiquidityDetails)
			wantTurnover := float64(tt.vol) * float64(tt.close)
			if d.Turnover != wantTurnover {
				t.Errorf("Turnover = %f, want %f", d.Turnover, wantTurnover)
			}
		})
	}
}

func TestLiquidityGateScoreMonotonic(t *testing.T) {
	g := NewLiquidityGate(10_000_000_000)

	prev := -1
	for vol := int64(100_000); vol <= 1_000_000; vol += 100_000 {
		res := g.Evaluate(&contracts.Candidate{History: flatHistory(25, 10_000, vol)})
		if res.Score < prev {
			t.Fatalf("score decreased from %d to %d at vol %d", prev, res.Score, vol)
		}
		prev = res.Score
	}
}

func TestTechnicalGatePalantir(t *testing.T) {
	g := NewTechnicalGate()

	// 130 bars of steady rise keeps 정배열 (MA20 > MA60 > MA120)
	c := &contracts.Candidate{History: risingHistory(130, 5000, 50, 1_000_000)}
	res := g.Evaluate(c)

	if !res.Passed {
		t.Fatal("advisory gate must pass with full history")
	}
	if res.Score != 90 {
		t.Errorf("Score = %d, want 90", res.Score)
	}
	d := res.Details.(contracts.TechnicalDetails)
	if !d.IsPalantir {
		t.Error("expected strong alignment flag")
	}
	if d.Degraded {
		t.Error("130 bars must not be degraded")
	}
}

func TestTechnicalGateMini(t *testing.T) {
	g := NewTechnicalGate()

	// Long decline then a short recent rise: MA60 stays below MA120
	// so the strong setup fails, but MA20 turns up with price above it.
	h := risingHistory(110, 13_000, -20, 1_000_000)
	h = append(h, risingHistory(20, 10_850, 50, 1_000_000)...)
	res := g.Evaluate(&contracts.Candidate{History: h})

	if !res.Passed {
		t.Fatal("advisory gate must pass")
	}
	d := res.Details.(contracts.TechnicalDetails)
	if d.IsPalantir {
		t.Error("flat base must not qualify as strong alignment")
	}
	if !d.IsPalantirMini {
		t.Error("expected weak alignment flag")
	}
	if res.Score != 70 {
		t.Errorf("Score = %d, want 70", res.Score)
	}
}

func TestTechnicalGateNoSetupBaseline(t *testing.T) {
	g := NewTechnicalGate()

	// Steady decline: price under MA20, no alignment, no contraction
	// result. Ratio defaults to 1.0 so the gate floors at 100-50 = 50
	// instead of zeroing out the composite.
	res := g.Evaluate(&contracts.Candidate{History: risingHistory(130, 20_000, -50, 1_000_000)})

	if !res.Passed {
		t.Fatal("advisory gate must pass with full history")
	}
	if res.Score != 50 {
		t.Errorf("Score = %d, want 50", res.Score)
	}
	if res.Reason != "No Setup" {
		t.Errorf("Reason = %q, want %q", res.Reason, "No Setup")
	}
	d := res.Details.(contracts.TechnicalDetails)
	if d.IsPalantir || d.IsPalantirMini {
		t.Error("declining history must not set alignment flags")
	}
	if d.VCPRatio != 1.0 {
		t.Errorf("VCPRatio = %v, want default 1.0", d.VCPRatio)
	}
}

func TestTechnicalGateInsufficientData(t *testing.T) {
	g := NewTechnicalGate()

	res := g.Evaluate(&contracts.Candidate{History: flatHistory(90, 10_000, 1_000_000)})
	if res.Passed {
		t.Error("short history without contraction result must fail")
	}
	if res.Score != 0 || res.Reason != "Insufficient Data" {
		t.Errorf("got score=%d reason=%q", res.Score, res.Reason)
	}
}

func TestTechnicalGateDegradedWithVCP(t *testing.T) {
	g := NewTechnicalGate()

	c := &contracts.Candidate{
		History: flatHistory(90, 10_000, 1_000_000),
		VCP:     &contracts.VCPResult{ContractionRatio: 0.4},
	}
	res := g.Evaluate(c)

	if !res.Passed {
		t.Fatal("short history with contraction result must pass degraded")
	}
	// 100 - 0.4*50 = 80
	if res.Score != 80 {
		t.Errorf("Score = %d, want 80", res.Score)
	}
	d := res.Details.(contracts.TechnicalDetails)
	if !d.Degraded {
		t.Error("expected degraded flag with 90 bars")
	}
}

func TestTechnicalGateVCPOverridesPalantir(t *testing.T) {
	g := NewTechnicalGate()

	c := &contracts.Candidate{
		History: risingHistory(130, 5000, 50, 1_000_000),
		VCP:     &contracts.VCPResult{ContractionRatio: 0.1},
	}
	res := g.Evaluate(c)

	// contraction score 95 beats alignment score 90
	if res.Score != 95 {
		t.Errorf("Score = %d, want 95", res.Score)
	}
}

func TestFlowGate(t *testing.T) {
	g := NewFlowGate(5_000_000, 3_000_000)

	tests := []struct {
		name      string
		foreign   int64
		inst      int64
		wantPass  bool
		wantScore int
	}{
		{"double outflow vetoed", -100, -100, false, 20},
		{"one-sided selling tolerated", -100, 50, true, 50},
		{"both flat", 0, 0, true, 50},
		{"net positive", 100, -50, true, 60},
		{"both positive", 100, 100, true, 80},
		{"strong foreign only", 6_000_000, 0, true, 70},
		{"all bonuses capped", 6_000_000, 4_000_000, true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contracts.Candidate{
				Flow: contracts.FlowMetrics{ForeignNet5D: tt.foreign, InstNet5D: tt.inst},
			}
			res := g.Evaluate(c)
			if res.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.wantPass)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", res.Score, tt.wantScore)
			}
		})
	}
}

func TestQualityGate(t *testing.T) {
	g := NewQualityGate(50)

	tests := []struct {
		name      string
		cap       float64
		wantPass  bool
		wantScore int
	}{
		{"micro cap rejected", 40, false, 30},
		{"floor passes", 50, true, 60},
		{"mid cap", 600, true, 80},
		{"large cap", 2500, true, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contracts.Candidate{
				Instrument: contracts.Instrument{MarketCap: tt.cap},
			}
			res := g.Evaluate(c)
			if res.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.wantPass)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", res.Score, tt.wantScore)
			}
		})
	}
}

func TestDetectVCP(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// Front half swings wide, back half tightens near the high
	h := make(contracts.PriceHistory, 0, 50)
	for i := 0; i < 25; i++ {
		h = append(h, contracts.PriceBar{
			High: 12_000, Low: 8_000, Close: 10_000, Volume: 1_000_000,
		})
	}
	for i := 0; i < 25; i++ {
		h = append(h, contracts.PriceBar{
			High: 12_000, Low: 11_000, Close: 11_800, Volume: 1_000_000,
		})
	}

	res := DetectVCP("005930", h, now)
	if res == nil {
		t.Fatal("expected contraction pattern")
	}

	// range2/range1 = 1000/4000
	if res.ContractionRatio != 0.25 {
		t.Errorf("ContractionRatio = %f, want 0.25", res.ContractionRatio)
	}
	if res.CurrentPrice != 11_800 || res.EntryPrice != 11_800 {
		t.Errorf("prices = %d/%d, want 11800/11800", res.CurrentPrice, res.EntryPrice)
	}
	if res.SignalDate != "2025-06-02" {
		t.Errorf("SignalDate = %s", res.SignalDate)
	}
	if res.Foreign5D <= 0 || res.Inst5D <= res.Foreign5D {
		t.Errorf("proxy flows = %d/%d", res.Foreign5D, res.Inst5D)
	}
}

func TestDetectVCPNegative(t *testing.T) {
	now := time.Now()

	t.Run("short history", func(t *testing.T) {
		if res := DetectVCP("000001", flatHistory(49, 10_000, 1_000), now); res != nil {
			t.Error("expected nil with 49 bars")
		}
	})

	t.Run("far from high", func(t *testing.T) {
		h := make(contracts.PriceHistory, 0, 50)
		for i := 0; i < 50; i++ {
			h = append(h, contracts.PriceBar{High: 20_000, Low: 9_000, Close: 10_000, Volume: 1_000})
		}
		if res := DetectVCP("000001", h, now); res != nil {
			t.Error("expected nil when price sits 50% below high")
		}
	})

	t.Run("no contraction", func(t *testing.T) {
		h := make(contracts.PriceHistory, 0, 50)
		for i := 0; i < 50; i++ {
			h = append(h, contracts.PriceBar{High: 10_500, Low: 9_500, Close: 10_000, Volume: 1_000})
		}
		if res := DetectVCP("000001", h, now); res != nil {
			t.Error("expected nil with unchanged range")
		}
	})
}

func TestChainAcceptance(t *testing.T) {
	ch := NewChain(scanCfg())

	// 130 bars, turnover above minimum, strong two-sided inflow,
	// mid cap. Expected composite 100*0.2 + 90*0.4 + 100*0.2 + 80*0.2 = 94.
	c := &contracts.Candidate{
		Instrument: contracts.Instrument{
			Ticker: "005930", Name: "삼성전자", Market: "KOSPI", MarketCap: 600,
		},
		History:     risingHistory(130, 5000, 50, 2_000_000),
		Flow:        contracts.FlowMetrics{ForeignNet5D: 6_000_000, InstNet5D: 4_000_000},
		RegimeScore: 75,
	}

	if !ch.Run(c) {
		t.Fatalf("expected qualification, gates: %+v", c.Gates)
	}
	if c.FinalScore != 94 {
		t.Errorf("FinalScore = %d, want 94", c.FinalScore)
	}
	if len(c.Gates) != 5 {
		t.Errorf("got %d gate results, want all 5 recorded", len(c.Gates))
	}
}

func TestChainThemeBonus(t *testing.T) {
	ch := NewChain(scanCfg())

	c := &contracts.Candidate{
		Instrument:  contracts.Instrument{Ticker: "012450", MarketCap: 600},
		Theme:       "방산",
		History:     risingHistory(130, 5000, 50, 2_000_000),
		Flow:        contracts.FlowMetrics{ForeignNet5D: 6_000_000, InstNet5D: 4_000_000},
		RegimeScore: 75,
	}

	if !ch.Run(c) {
		t.Fatal("expected qualification")
	}
	if c.FinalScore != 104 {
		t.Errorf("FinalScore = %d, want 94 + theme bonus", c.FinalScore)
	}
}

func TestChainIlliquidRejection(t *testing.T) {
	ch := NewChain(scanCfg())

	// 90 bars at 2 billion daily turnover: L1 blocks the pipeline
	c := &contracts.Candidate{
		Instrument: contracts.Instrument{Ticker: "000001", MarketCap: 600},
		History:    flatHistory(90, 10_000, 200_000),
		Flow:       contracts.FlowMetrics{ForeignNet5D: 1, InstNet5D: 1},
	}

	if ch.Run(c) {
		t.Fatal("expected rejection")
	}
	if _, ok := c.Gates[NameLiquidity]; !ok {
		t.Error("rejecting gate result must be recorded")
	}
	if _, ok := c.Gates[NameTechnical]; ok {
		t.Error("gates past the rejection must not run")
	}
}

func TestChainDoubleOutflowVeto(t *testing.T) {
	ch := NewChain(scanCfg())

	c := &contracts.Candidate{
		Instrument: contracts.Instrument{Ticker: "000001", MarketCap: 600},
		History:    risingHistory(130, 5000, 50, 2_000_000),
		Flow:       contracts.FlowMetrics{ForeignNet5D: -100, InstNet5D: -100},
	}

	if ch.Run(c) {
		t.Fatal("expected veto")
	}
	res := c.Gates[NameFlow]
	if res.Passed || res.Reason != "Double Outflow" {
		t.Errorf("got %+v", res)
	}
}

func TestChainRegimeEnforcement(t *testing.T) {
	cfg := scanCfg()
	cfg.StrategyMode = "vcp_flow_macro"
	ch := NewChain(cfg)

	bear := &contracts.Candidate{
		Instrument:  contracts.Instrument{Ticker: "000001", MarketCap: 600},
		History:     risingHistory(130, 5000, 50, 2_000_000),
		Flow:        contracts.FlowMetrics{ForeignNet5D: 100, InstNet5D: 100},
		RegimeScore: 20,
	}
	if ch.Run(bear) {
		t.Fatal("deep bear regime must block macro mode")
	}
	if len(bear.Gates) != 1 {
		t.Errorf("got %d gate results, want only L0", len(bear.Gates))
	}

	// Same candidate without macro enforcement sails through L0, but
	// the bearish reading still lands in the evidence trail
	plain := NewChain(scanCfg())
	advisory := &contracts.Candidate{
		Instrument:  contracts.Instrument{Ticker: "000001", MarketCap: 600},
		History:     risingHistory(130, 5000, 50, 2_000_000),
		Flow:        contracts.FlowMetrics{ForeignNet5D: 100, InstNet5D: 100},
		RegimeScore: 20,
	}
	if !plain.Run(advisory) {
		t.Error("non-macro mode must not block on the regime score")
	}
	l0, ok := advisory.Gates[NameRegime]
	if !ok {
		t.Fatal("L0 must be recorded in every mode")
	}
	if l0.Passed {
		t.Error("deep bear reading must be recorded as failed even when advisory")
	}
	if l0.Score != 20 {
		t.Errorf("L0 score = %d, want the regime score carried through", l0.Score)
	}
}

func TestChainVCPOnlyRequiresPattern(t *testing.T) {
	cfg := scanCfg()
	cfg.StrategyMode = "vcp_only"
	ch := NewChain(cfg)

	c := &contracts.Candidate{
		Instrument: contracts.Instrument{Ticker: "000001", MarketCap: 600},
		History:    risingHistory(130, 5000, 50, 2_000_000),
		Flow:       contracts.FlowMetrics{ForeignNet5D: 100, InstNet5D: 100},
	}
	if ch.Run(c) {
		t.Fatal("vcp_only without a pattern must reject")
	}
}
