package plan

import (
	"math"
	"time"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/pkg/config"
)

// Builder constructs tick-valid execution plans from the trade rule.
// ⭐ SSOT: 손절/익절/타임스탑 규칙은 TradeRuleConfig에만 존재
// Pure and deterministic: the clock is injected by the caller so
// identical inputs always yield identical plans.
type Builder struct {
	rule config.TradeRuleConfig
}

// NewBuilder creates a plan builder bound to one trade rule
func NewBuilder(rule config.TradeRuleConfig) *Builder {
	return &Builder{rule: rule}
}

// BuildBuyPlan produces a BUY plan for the given current price.
// riskPivot, when positive and strictly below entry, replaces the fixed
// percentage stop loss unless it sits deeper than MaxPivotDropPct.
func (b *Builder) BuildBuyPlan(ticker string, currentPrice int64, riskPivot int64, now time.Time) contracts.OrderPlan {
	rule := b.rule

	// 1. 진입가: 현재가를 호가 단위로 정규화
	entry := RoundToTick(float64(currentPrice))

	// 2. 손절가: 기본 고정 퍼센트, 피벗이 얕으면 피벗 우선
	finalSL := float64(entry) * (1 - rule.StopLossPct/100)
	if riskPivot > 0 && riskPivot < entry {
		pivotDropPct := float64(entry-riskPivot) / float64(entry) * 100
		if pivotDropPct < rule.MaxPivotDropPct {
			finalSL = float64(riskPivot)
		}
	}
	sl := RoundToTick(finalSL)

	// 3. 익절 목표
	tp1 := RoundToTick(float64(entry) * (1 + rule.TP1Pct/100))
	tp2 := RoundToTick(float64(entry) * (1 + rule.TP2Pct/100))

	// 4. 타임 스탑
	timeStop := now.AddDate(0, 0, rule.TimeStopDays).Format("2006-01-02")

	// 5. 포지션 사이징 (고정 자본 모델)
	capitalPerTrade := rule.TotalCapital * (rule.PositionSizePct / 100)
	var qty int64
	if entry > 0 {
		qty = int64(capitalPerTrade / float64(entry))
	}

	// 6. 손익비
	var rr float64
	if risk := entry - sl; risk > 0 {
		rr = math.Round(float64(tp1-entry)/float64(risk)*100) / 100
	}

	return contracts.OrderPlan{
		Ticker:          ticker,
		Action:          "BUY",
		EntryPrice:      entry,
		StopLoss:        sl,
		TakeProfit1:     tp1,
		TakeProfit2:     tp2,
		Quantity:        qty,
		TimeStopDate:    timeStop,
		RiskRewardRatio: rr,
	}
}
