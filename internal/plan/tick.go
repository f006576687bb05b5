package plan

import "math"

// TickSize returns the KRX price tick for the given price level.
// KOSPI/KOSDAQ 공통 단순화 규칙 (안정성을 위해 KOSPI 기준 통일).
func TickSize(price int64) int64 {
	switch {
	case price < 1_000:
		return 1
	case price < 5_000:
		return 5
	case price < 10_000:
		return 10
	case price < 50_000:
		return 50
	case price < 100_000:
		return 100
	case price < 500_000:
		return 500
	default:
		return 1_000
	}
}

// RoundToTick rounds a raw price to the NEAREST valid tick.
// 버림이 아닌 반올림. 호가 단위는 절사된 정수 가격 기준으로 결정한다.
func RoundToTick(price float64) int64 {
	p := int64(price)
	tick := TickSize(p)
	return int64(math.Round(float64(p)/float64(tick))) * tick
}
