package gates

import (
	"fmt"

	"github.com/wonny/nice/internal/contracts"
)

// QualityGate implements L4: size and quality floor.
// Micro caps below the floor are hard-rejected; above it the score
// steps up with capitalization tier.
type QualityGate struct {
	MinMarketCapBln float64 // 시총 하한 (십억원)
}

// NewQualityGate creates the L4 gate
func NewQualityGate(minCapBln float64) *QualityGate {
	return &QualityGate{MinMarketCapBln: minCapBln}
}

// Name returns the evidence key for this gate
func (g *QualityGate) Name() string { return NameQuality }

// Evaluate checks market capitalization tiers
func (g *QualityGate) Evaluate(c *contracts.Candidate) contracts.GateResult {
	cap := c.MarketCap
	details := contracts.QualityDetails{Cap: cap}

	if cap < g.MinMarketCapBln {
		return contracts.GateResult{
			Passed:  false,
			Score:   30,
			Reason:  "Too Small Cap",
			Details: details,
		}
	}

	score := 60
	switch {
	case cap > 2000:
		score = 90
	case cap > 500:
		score = 80
	}

	return contracts.GateResult{
		Passed:  true,
		Score:   score,
		Reason:  fmt.Sprintf("Market Cap: %.0f십억", cap),
		Details: details,
	}
}
