package flowsource

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/internal/external/naver"
	"github.com/wonny/nice/pkg/logger"
	"github.com/wonny/nice/pkg/redis"
)

// 수급 집계 구간
const (
	flowDays         = 5  // 순매수 합산 거래일 수
	fetchWindowDays  = 14 // 휴장일 감안한 달력일 조회 범위
	requestsPerSec   = 5  // Naver 스크래핑 페이스
)

// Source supplies 5-day investor net flow per ticker from the Naver
// investor pages. Implements contracts.FlowSource. Results are cached
// per day; scraping is paced with a local rate limiter since one scan
// cycle touches hundreds of tickers.
// ⭐ SSOT: 종목 수급 집계는 이 패키지에서만
type Source struct {
	naver   *naver.Client
	cache   *redis.Cache
	limiter *rate.Limiter
	logger  *logger.Logger
	now     func() time.Time
}

// NewSource creates a flow source
func NewSource(naverClient *naver.Client, cache *redis.Cache, log *logger.Logger) *Source {
	return &Source{
		naver:   naverClient,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), requestsPerSec),
		logger:  log.WithField("module", "flowsource"),
		now:     time.Now,
	}
}

// GetFlowMetrics returns the 5 most recent trading days of foreign and
// institutional net buying. Returns an error when no real data could
// be obtained; the caller decides whether a proxy substitutes.
func (s *Source) GetFlowMetrics(ctx context.Context, ticker string, _ contracts.PriceHistory) (contracts.FlowMetrics, error) {
	now := s.now()
	cacheKey := redis.FlowKey(ticker, now.Format("2006-01-02"))

	var cached contracts.FlowMetrics
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return contracts.FlowMetrics{}, fmt.Errorf("flow rate limit: %w", err)
	}

	trades, err := s.naver.FetchInvestorTrades(ctx, ticker, now.AddDate(0, 0, -fetchWindowDays), now)
	if err != nil {
		return contracts.FlowMetrics{}, fmt.Errorf("fetch investor trades for %s: %w", ticker, err)
	}
	if len(trades) == 0 {
		return contracts.FlowMetrics{}, fmt.Errorf("no investor data for %s", ticker)
	}

	metrics := sumRecent(trades, flowDays)

	if err := s.cache.Set(ctx, cacheKey, metrics, redis.TTLDaily); err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to cache flow metrics")
	}
	return metrics, nil
}

// sumRecent sums net flows over the most recent n trading days
func sumRecent(trades []naver.InvestorTrade, n int) contracts.FlowMetrics {
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].TradeDate.After(trades[j].TradeDate)
	})
	if len(trades) > n {
		trades = trades[:n]
	}

	var m contracts.FlowMetrics
	for _, t := range trades {
		m.ForeignNet5D += t.ForeignNet
		m.InstNet5D += t.InstNet
	}
	return m
}
