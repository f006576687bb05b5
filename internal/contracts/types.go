package contracts

import "time"

// PriceBar represents one daily OHLCV bar (가격은 원 단위)
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   int64     `json:"open"`
	High   int64     `json:"high"`
	Low    int64     `json:"low"`
	Close  int64     `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceHistory is a chronological sequence of daily bars for one instrument.
// Oldest first. Owned by a single scan task, never shared.
type PriceHistory []PriceBar

// Len returns the number of bars
func (h PriceHistory) Len() int { return len(h) }

// Last returns the most recent bar
func (h PriceHistory) Last() PriceBar {
	return h[len(h)-1]
}

// Tail returns the most recent n bars (or all bars if fewer exist)
func (h PriceHistory) Tail(n int) PriceHistory {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// SMA returns the simple moving average of close prices over the last
// window bars, ending offset bars before the latest bar.
// SMA(20, 0) is today's MA20, SMA(20, 5) is MA20 five bars ago.
func (h PriceHistory) SMA(window, offset int) float64 {
	end := len(h) - offset
	start := end - window
	if start < 0 {
		return 0
	}

	var sum int64
	for i := start; i < end; i++ {
		sum += h[i].Close
	}
	return float64(sum) / float64(window)
}

// AvgVolume returns the mean volume over the last n bars
func (h PriceHistory) AvgVolume(n int) float64 {
	bars := h.Tail(n)
	if len(bars) == 0 {
		return 0
	}

	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars))
}

// RangeOf returns high-low range over bars[from:to)
func (h PriceHistory) RangeOf(from, to int) int64 {
	if from < 0 || to > len(h) || from >= to {
		return 0
	}

	high := h[from].High
	low := h[from].Low
	for _, b := range h[from:to] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high - low
}

// FlowMetrics holds 5-day net investor flow for one instrument.
// IsProxy marks values estimated from volume×price when real
// investor data was unavailable.
// ⭐ SSOT: 수급 프록시 여부는 이 플래그에만 기록
type FlowMetrics struct {
	ForeignNet5D int64 `json:"foreign_5d"`
	InstNet5D    int64 `json:"inst_5d"`
	IsProxy      bool  `json:"is_proxy"`
}

// GateResult is the outcome of a single gate evaluation. Immutable.
type GateResult struct {
	Passed  bool        `json:"passed"`
	Score   int         `json:"score"` // 0-100
	Reason  string      `json:"reason"`
	Details GateDetails `json:"details,omitempty"`
}

// GateDetails is a closed set of per-gate detail payloads.
// Field names preserve the evidence serialization format.
type GateDetails interface {
	gateDetails()
}

// RegimeDetails carries the market condition snapshot behind L0
type RegimeDetails struct {
	GateScore int    `json:"gate_score"`
	Status    string `json:"status"` // BULLISH, NEUTRAL, BEARISH
}

// LiquidityDetails carries L1 turnover data
type LiquidityDetails struct {
	Turnover float64 `json:"turnover"` // 20일 평균 거래대금 (원)
}

// TechnicalDetails carries L2 pattern flags and moving averages
type TechnicalDetails struct {
	IsPalantir     bool    `json:"is_palantir"`
	IsPalantirMini bool    `json:"is_palantir_mini"`
	MA20           float64 `json:"ma20"`
	MA60           float64 `json:"ma60"`
	VCPRatio       float64 `json:"vcp_ratio"`
	Degraded       bool    `json:"degraded,omitempty"` // <120 bars, external ratio only
}

// FlowDetails carries L3 net flow inputs
type FlowDetails struct {
	Foreign int64 `json:"foreign"`
	Inst    int64 `json:"inst"`
	IsProxy bool  `json:"is_proxy,omitempty"`
}

// QualityDetails carries L4 capitalization input (억원 단위 아님, 십억원)
type QualityDetails struct {
	Cap float64 `json:"cap"` // market cap in billions of KRW
}

func (RegimeDetails) gateDetails()    {}
func (LiquidityDetails) gateDetails() {}
func (TechnicalDetails) gateDetails() {}
func (FlowDetails) gateDetails()      {}
func (QualityDetails) gateDetails()   {}

// Instrument is one row of the scan universe
type Instrument struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Market    string  `json:"market"` // KOSPI, KOSDAQ
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"market_cap"` // billions of KRW
}

// VCPResult is the volatility-contraction detection output for one
// instrument, consumed by the technical gate and the flow proxy.
type VCPResult struct {
	Ticker           string  `json:"ticker"`
	CurrentPrice     int64   `json:"current_price"`
	EntryPrice       int64   `json:"entry_price"`
	Score            int     `json:"score"`
	ContractionRatio float64 `json:"contraction_ratio"`
	Foreign5D        int64   `json:"foreign_5d"` // proxy estimate
	Inst5D           int64   `json:"inst_5d"`    // proxy estimate
	SignalDate       string  `json:"signal_date"`
}

// Candidate is the per-instrument working state of one scan task.
// Created at task start, discarded once a Signal is (or is not) produced.
type Candidate struct {
	Instrument
	Theme   string
	History PriceHistory
	Flow    FlowMetrics
	VCP     *VCPResult // nil when no contraction pattern detected

	RegimeScore int // externally supplied market condition score

	Gates      map[string]GateResult // key: L0_Regime .. L4_Quality
	FinalScore int
}

// OrderPlan is a tick-valid execution plan for one approved candidate.
// All four price fields are exact KRX tick multiples. Immutable.
type OrderPlan struct {
	Ticker          string  `json:"ticker"`
	Action          string  `json:"action"` // BUY, SELL, HOLD
	EntryPrice      int64   `json:"entry_price"`
	StopLoss        int64   `json:"stop_loss"`
	TakeProfit1     int64   `json:"tp1"`
	TakeProfit2     int64   `json:"tp2"`
	Quantity        int64   `json:"quantity"`
	TimeStopDate    string  `json:"time_stop_date"` // YYYY-MM-DD
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

// Signal statuses
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
	StatusTheme  = "THEME"
)

// Signal is the persisted outcome for one qualifying candidate.
// Written once per cycle by the scanner; price updates and exits mutate
// it externally.
type Signal struct {
	Ticker       string    `json:"ticker"`
	Name         string    `json:"name"`
	Market       string    `json:"market"`
	Sector       string    `json:"sector"`
	Theme        string    `json:"theme"`
	StrategyMode string    `json:"strategy_mode"`
	Score        int       `json:"score"`
	TechScore    int       `json:"nice_tech_score"`
	IsPalantir   bool      `json:"is_palantir"`
	IsMini       bool      `json:"is_palantir_mini"`
	CurrentPrice int64     `json:"current_price"`
	Plan         OrderPlan `json:"plan"`
	Status       string    `json:"status"`
	SignalDate   string    `json:"signal_date"`
}

// EvidencePacket is the immutable audit record for one evaluation
type EvidencePacket struct {
	Version       string                `json:"version"`
	Timestamp     time.Time             `json:"timestamp"`
	Ticker        string                `json:"ticker"`
	FinalScore    int                   `json:"final_score"`
	Gates         map[string]GateResult `json:"gates"`
	ExecutionPlan *OrderPlan            `json:"execution_plan"`
	Metadata      map[string]string     `json:"metadata"`
}
