package gates

import (
	"fmt"

	"github.com/wonny/nice/internal/contracts"
)

// TechnicalGate implements L2: moving-average stack and volatility
// contraction scoring. Advisory by design: it shapes the composite
// score but only a true data shortage can block a candidate here.
// ⭐ SSOT: 팔란티어/VCP 판정 기준은 이 파일에만 존재
type TechnicalGate struct{}

// NewTechnicalGate creates the L2 gate
func NewTechnicalGate() *TechnicalGate {
	return &TechnicalGate{}
}

// Name returns the evidence key for this gate
func (g *TechnicalGate) Name() string { return NameTechnical }

// Evaluate scores the MA stack and the contraction pattern.
// 세 가지 세팅을 각각 점수화하고 최댓값을 채택한다:
//   - 팔란티어 (정배열 + 주가 > MA20): 90점 이상
//   - 팔란티어 미니 (주가 > MA20 + MA20 상승 전환): 70점
//   - VCP 수축 점수: 100 - ratio*50
func (g *TechnicalGate) Evaluate(c *contracts.Candidate) contracts.GateResult {
	h := c.History

	degraded := h.Len() < 120
	if degraded && c.VCP == nil {
		return insufficient("Insufficient Data")
	}

	var (
		isPalantir bool
		isMini     bool
		ma20, ma60 float64
		score      int
		reason     string
	)

	if !degraded {
		ma20 = h.SMA(20, 0)
		ma60 = h.SMA(60, 0)
		ma120 := h.SMA(120, 0)
		price := float64(h.Last().Close)

		// 팔란티어 세팅: 장기 정배열 구간에서 MA20 위 주가
		isPalantir = ma20 > ma60 && ma60 > ma120 && price > ma20

		// 미니 세팅: MA20 위 주가 + 5일 전 대비 MA20 상승
		ma20Prev := h.SMA(20, 5)
		isMini = price > ma20 && ma20 > ma20Prev

		switch {
		case isPalantir:
			score = 90
			reason = "Palantir Setup"
		case isMini:
			score = 70
			reason = "Palantir Mini Setup"
		}
	}

	// 수축 패턴이 없으면 ratio 1.0으로 간주해 기본 50점을 깐다
	vcpRatio := 1.0
	if c.VCP != nil {
		vcpRatio = c.VCP.ContractionRatio
	}
	vcpScore := int(100 - vcpRatio*50)
	if vcpScore < 0 {
		vcpScore = 0
	}
	if vcpScore > score {
		score = vcpScore
		if c.VCP != nil {
			reason = fmt.Sprintf("VCP Contraction %.2f", vcpRatio)
		}
	}

	if reason == "" {
		reason = "No Setup"
	}

	return contracts.GateResult{
		Passed: true,
		Score:  score,
		Reason: reason,
		Details: contracts.TechnicalDetails{
			IsPalantir:     isPalantir,
			IsPalantirMini: isMini,
			MA20:           ma20,
			MA60:           ma60,
			VCPRatio:       vcpRatio,
			Degraded:       degraded,
		},
	}
}
