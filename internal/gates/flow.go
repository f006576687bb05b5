package gates

import (
	"fmt"

	"github.com/wonny/nice/internal/contracts"
)

// FlowGate implements L3: 5-day investor flow scoring.
// Only a simultaneous foreign AND institutional net sell vetoes the
// candidate (동반 순매도). One-sided selling is tolerated and merely
// scores low.
type FlowGate struct {
	ForeignStrongBuy int64 // 외인 강매수 기준 (주)
	InstStrongBuy    int64 // 기관 강매수 기준 (주)
}

// NewFlowGate creates the L3 gate
func NewFlowGate(foreignStrong, instStrong int64) *FlowGate {
	return &FlowGate{
		ForeignStrongBuy: foreignStrong,
		InstStrongBuy:    instStrong,
	}
}

// Name returns the evidence key for this gate
func (g *FlowGate) Name() string { return NameFlow }

// Evaluate scores the 5-day foreign and institutional net flow
func (g *FlowGate) Evaluate(c *contracts.Candidate) contracts.GateResult {
	foreign := c.Flow.ForeignNet5D
	inst := c.Flow.InstNet5D

	details := contracts.FlowDetails{
		Foreign: foreign,
		Inst:    inst,
		IsProxy: c.Flow.IsProxy,
	}

	// 동반 순매도는 유일한 하드 거부 조건
	if foreign < 0 && inst < 0 {
		return contracts.GateResult{
			Passed:  false,
			Score:   20,
			Reason:  "Double Outflow",
			Details: details,
		}
	}

	score := 50
	if foreign+inst > 0 {
		score += 10
	}
	if foreign > 0 && inst > 0 {
		score += 20
	}
	if foreign > g.ForeignStrongBuy {
		score += 10
	}
	if inst > g.InstStrongBuy {
		score += 10
	}
	if score > 100 {
		score = 100
	}

	return contracts.GateResult{
		Passed:  true,
		Score:   score,
		Reason:  fmt.Sprintf("Foreign: %d, Inst: %d", foreign, inst),
		Details: details,
	}
}
