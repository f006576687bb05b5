package gates

import (
	"github.com/wonny/nice/internal/contracts"
)

// Gate is one stage of the qualification pipeline. Gates are stateless
// and side-effect-free: they read the candidate but never mutate it.
// A gate that cannot compute a result returns passed=false, score=0,
// reason "Insufficient Data", which is a normal outcome, not an error.
type Gate interface {
	Name() string
	Evaluate(c *contracts.Candidate) contracts.GateResult
}

// Gate names used as evidence keys
const (
	NameRegime    = "L0_Regime"
	NameLiquidity = "L1_Liquidity"
	NameTechnical = "L2_Technical"
	NameFlow      = "L3_Flow"
	NameQuality   = "L4_Quality"
)

// StrategyMode selects gate bypasses for A/B testing effectiveness
type StrategyMode string

const (
	ModeVCPOnly      StrategyMode = "vcp_only"       // VCP pattern only
	ModeFlowOnly     StrategyMode = "flow_only"      // Supply/demand flow only
	ModeVCPFlow      StrategyMode = "vcp_flow"       // VCP + Flow combined
	ModeVCPFlowMacro StrategyMode = "vcp_flow_macro" // VCP + Flow + Macro gate
	ModeFullAI       StrategyMode = "full_ai"        // Full strategy
)

// EnforceRegime reports whether the L0 market regime veto applies.
// Single-factor modes bypass the macro gate; combined modes enforce it.
func (m StrategyMode) EnforceRegime() bool {
	return m == ModeVCPFlowMacro || m == ModeFullAI
}

// RequireVCP reports whether a missing contraction pattern drops the
// candidate outright.
func (m StrategyMode) RequireVCP() bool {
	return m == ModeVCPOnly
}

// UsesVCP reports whether contraction detection runs at all
func (m StrategyMode) UsesVCP() bool {
	return m != ModeFlowOnly
}

// insufficient is the shared result for gates starved of data
func insufficient(reason string) contracts.GateResult {
	return contracts.GateResult{
		Passed: false,
		Score:  0,
		Reason: reason,
	}
}
