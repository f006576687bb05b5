package gates

import (
	"github.com/wonny/nice/internal/contracts"
)

// RegimeGate implements L0: the market-wide kill switch.
// It consumes the externally supplied regime score and hard-fails only
// in a deep bear regime; otherwise the score passes through unchanged.
type RegimeGate struct {
	Floor int // fail below this score (기본 30)
}

// NewRegimeGate creates the L0 gate
func NewRegimeGate(floor int) *RegimeGate {
	return &RegimeGate{Floor: floor}
}

// Name returns the evidence key for this gate
func (g *RegimeGate) Name() string { return NameRegime }

// Evaluate checks the market condition score
func (g *RegimeGate) Evaluate(c *contracts.Candidate) contracts.GateResult {
	score := c.RegimeScore
	failed := score < g.Floor

	return contracts.GateResult{
		Passed: !failed,
		Score:  score,
		Reason: "Market Regime Check",
		Details: contracts.RegimeDetails{
			GateScore: score,
			Status:    RegimeStatus(score),
		},
	}
}

// RegimeStatus maps a regime score to its market status label
func RegimeStatus(score int) string {
	switch {
	case score >= 70:
		return "BULLISH"
	case score >= 40:
		return "NEUTRAL"
	default:
		return "BEARISH"
	}
}

// RegimeRecommendation maps a regime score to an action label
func RegimeRecommendation(score int) string {
	switch {
	case score >= 70:
		return "BUY"
	case score >= 40:
		return "HOLD"
	default:
		return "SELL"
	}
}
