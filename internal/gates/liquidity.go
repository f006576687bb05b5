package gates

import (
	"fmt"

	"github.com/wonny/nice/internal/contracts"
)

// LiquidityGate implements L1: the liquidity & tradability guard.
// Cheapest data-dependent gate, so it runs first and fails fast on
// illiquid names before any heavier computation.
type LiquidityGate struct {
	MinTurnoverKRW float64 // 20일 평균 거래대금 하한
}

// NewLiquidityGate creates the L1 gate
func NewLiquidityGate(minTurnover float64) *LiquidityGate {
	return &LiquidityGate{MinTurnoverKRW: minTurnover}
}

// Name returns the evidence key for this gate
func (g *LiquidityGate) Name() string { return NameLiquidity }

// Evaluate checks trailing 20-bar average notional turnover.
// Turnover = mean(volume) × latest close.
func (g *LiquidityGate) Evaluate(c *contracts.Candidate) contracts.GateResult {
	h := c.History
	if h.Len() < 20 {
		return insufficient("Insufficient Data")
	}

	recent := h.Tail(20)
	avgVol := recent.AvgVolume(20)
	currPrice := float64(recent.Last().Close)

	turnover := avgVol * currPrice
	passed := turnover >= g.MinTurnoverKRW

	score := 100
	if !passed {
		score = int(turnover / g.MinTurnoverKRW * 60)
		if score > 100 {
			score = 100
		}
	}

	return contracts.GateResult{
		Passed: passed,
		Score:  score,
		Reason: fmt.Sprintf("Turnover: %.1f억 (Min %.1f억)",
			turnover/100_000_000, g.MinTurnoverKRW/100_000_000),
		Details: contracts.LiquidityDetails{
			Turnover: turnover,
		},
	}
}
