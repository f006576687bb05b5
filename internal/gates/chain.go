package gates

import (
	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/pkg/config"
)

// Chain runs the L0-L4 gate pipeline on one candidate and computes the
// composite score. Stateless and safe for concurrent use across scan
// workers.
//
// 실행 순서와 차단 규칙:
//   - L0 시장 레짐: 매크로 모드에서만 하드 차단
//   - L1 유동성: 하드 차단 (fail fast)
//   - L2 기술: 자문 성격, 데이터 부족 시에만 차단 (flow_only 제외)
//   - L3 수급: 동반 순매도만 차단
//   - L4 체급: 시총 하한 미달 시 차단
type Chain struct {
	Mode StrategyMode

	regime    *RegimeGate
	liquidity *LiquidityGate
	technical *TechnicalGate
	flow      *FlowGate
	quality   *QualityGate

	weights    config.GateWeights
	threshold  int
	themeBonus int
}

// NewChain wires the gates from scan configuration
func NewChain(cfg config.ScanConfig) *Chain {
	return &Chain{
		Mode:       StrategyMode(cfg.StrategyMode),
		regime:     NewRegimeGate(cfg.RegimeFloor),
		liquidity:  NewLiquidityGate(cfg.MinTurnoverKRW),
		technical:  NewTechnicalGate(),
		flow:       NewFlowGate(cfg.ForeignStrongBuy, cfg.InstStrongBuy),
		quality:    NewQualityGate(cfg.MinMarketCapBln),
		weights:    cfg.Weights,
		threshold:  cfg.ScoreThreshold,
		themeBonus: cfg.ThemeBonus,
	}
}

// Run evaluates every gate in order, records results on the candidate,
// and returns whether it qualifies. A rejected candidate keeps the
// partial gate map accumulated up to the rejecting gate, so evidence
// can still explain the rejection.
func (ch *Chain) Run(c *contracts.Candidate) bool {
	if c.Gates == nil {
		c.Gates = make(map[string]contracts.GateResult, 5)
	}

	// L0 is always recorded; only macro modes let it block
	l0 := ch.regime.Evaluate(c)
	c.Gates[NameRegime] = l0
	if ch.Mode.EnforceRegime() && !l0.Passed {
		return false
	}

	l1 := ch.liquidity.Evaluate(c)
	c.Gates[NameLiquidity] = l1
	if !l1.Passed {
		return false
	}

	if ch.Mode.RequireVCP() && c.VCP == nil {
		return false
	}

	l2 := ch.technical.Evaluate(c)
	c.Gates[NameTechnical] = l2
	if ch.Mode != ModeFlowOnly && !l2.Passed {
		return false
	}

	l3 := ch.flow.Evaluate(c)
	c.Gates[NameFlow] = l3
	if !l3.Passed {
		return false
	}

	l4 := ch.quality.Evaluate(c)
	c.Gates[NameQuality] = l4
	if !l4.Passed {
		return false
	}

	c.FinalScore = ch.composite(l1, l2, l3, l4, c.Theme != "")
	return c.FinalScore >= ch.threshold
}

// composite blends the four weighted gate scores plus the theme bonus
func (ch *Chain) composite(l1, l2, l3, l4 contracts.GateResult, themed bool) int {
	score := int(
		float64(l1.Score)*ch.weights.Liquidity +
			float64(l2.Score)*ch.weights.Technical +
			float64(l3.Score)*ch.weights.Flow +
			float64(l4.Score)*ch.weights.Quality)

	if themed {
		score += ch.themeBonus
	}
	return score
}
