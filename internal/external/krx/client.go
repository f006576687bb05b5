package krx

import (
	"strconv"
	"strings"
	"time"

	"github.com/wonny/nice/pkg/httputil"
	"github.com/wonny/nice/pkg/logger"
)

// Client handles communication with KRX market data (Naver mobile API
// for index quotes and trends, data.krx.co.kr for listings)
// ⭐ SSOT: KRX 시장 데이터 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new KRX client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://m.stock.naver.com",
	}
}

// IndexQuote is one index snapshot with its day-over-day change
type IndexQuote struct {
	Code      string // KOSPI, KOSDAQ
	Value     float64
	ChangePct float64
	TradeDate time.Time
}

// MarketTrend is one day of market-wide investor net trading
type MarketTrend struct {
	TradeDate      time.Time
	ForeignNet     float64 // 외국인 순매수
	InstitutionNet float64 // 기관 순매수
	IndividualNet  float64 // 개인 순매수
}

// parseSignedNumber parses KRX/Naver number strings like "+1,459,781"
// or "-1,240.18" to float64
func parseSignedNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -val
	}
	return val
}
