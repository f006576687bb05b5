package gates

import (
	"time"

	"github.com/wonny/nice/internal/contracts"
)

// VCP 탐지 파라미터
const (
	vcpLookback       = 50   // 탐지 구간 (일봉 수)
	vcpContractionMax = 0.85 // 후반 변동폭 / 전반 변동폭 상한
	vcpNearHighPct    = 0.85 // 고점 대비 주가 하한 비율
	vcpFlowAssumption = 0.1  // 거래대금 중 수급 추정 비중
)

// DetectVCP scans the trailing 50 bars for a volatility contraction
// pattern: price holding near the period high while the trading range
// of the back half shrinks versus the front half.
// Returns nil when no pattern is present, which is a normal outcome.
//
// 감지 시 실수급 데이터가 없는 종목을 위해 거래대금 기반 프록시
// 수급(외인 30%, 기관 40% 비중 가정)을 함께 산출한다.
func DetectVCP(ticker string, h contracts.PriceHistory, now time.Time) *contracts.VCPResult {
	if h.Len() < vcpLookback {
		return nil
	}

	recent := h.Tail(vcpLookback)
	currentPrice := recent.Last().Close

	var recentHigh int64
	for _, b := range recent {
		if b.High > recentHigh {
			recentHigh = b.High
		}
	}
	if recentHigh == 0 {
		return nil
	}

	// 1. 고점 근접도
	fromHighPct := float64(recentHigh-currentPrice) / float64(recentHigh)
	if float64(currentPrice) < float64(recentHigh)*vcpNearHighPct {
		return nil
	}

	// 2. 변동폭 수축: 전반 25일 레인지 대비 후반 25일 레인지
	half := vcpLookback / 2
	range1 := recent.RangeOf(0, half)
	range2 := recent.RangeOf(half, vcpLookback)
	if range1 == 0 {
		return nil
	}

	ratio := float64(range2) / float64(range1)
	if ratio > vcpContractionMax {
		return nil
	}

	// 실수급 미확보 종목용 프록시: 거래대금의 일부를 수급으로 추정
	lastHalf := recent[half:]
	estFlow := lastHalf.AvgVolume(half) * float64(currentPrice) * vcpFlowAssumption

	score := int(100 - fromHighPct*100 - ratio*20)
	if score < 0 {
		score = 0
	}

	return &contracts.VCPResult{
		Ticker:           ticker,
		CurrentPrice:     currentPrice,
		EntryPrice:       currentPrice, // 돌파 시점 근사치
		Score:            score,
		ContractionRatio: ratio,
		Foreign5D:        int64(estFlow * 0.3),
		Inst5D:           int64(estFlow * 0.4),
		SignalDate:       now.Format("2006-01-02"),
	}
}
