package regime

import (
	"context"
	"time"

	"github.com/wonny/nice/internal/external/krx"
	"github.com/wonny/nice/internal/gates"
	"github.com/wonny/nice/pkg/logger"
	"github.com/wonny/nice/pkg/redis"
)

// Snapshot is the full market condition picture behind one regime score
type Snapshot struct {
	Status         string  `json:"status"` // BULLISH, NEUTRAL, BEARISH
	KospiValue     float64 `json:"kospi_value"`
	KospiChangePct float64 `json:"kospi_change_pct"`
	KosdaqValue    float64 `json:"kosdaq_value"`
	KosdaqChange   float64 `json:"kosdaq_change_pct"`
	ForeignNet     float64 `json:"foreign_net"`
	GateScore      int     `json:"gate_score"`
	Recommendation string  `json:"recommendation"` // BUY, HOLD, SELL
	GeneratedAt    string  `json:"generated_at"`
}

// Source computes the market-wide regime score from KOSPI/KOSDAQ index
// movement. Implements contracts.RegimeSource. Snapshots are cached per
// calendar day with a short TTL so a scan burst hits the index API once.
// ⭐ SSOT: 시장 레짐 산출은 이 패키지에서만
type Source struct {
	krx    *krx.Client
	cache  *redis.Cache
	logger *logger.Logger
	now    func() time.Time
}

// NewSource creates a regime source
func NewSource(krxClient *krx.Client, cache *redis.Cache, log *logger.Logger) *Source {
	return &Source{
		krx:    krxClient,
		cache:  cache,
		logger: log.WithField("module", "regime"),
		now:    time.Now,
	}
}

// GetRegimeScore returns the current regime score (0-100)
func (s *Source) GetRegimeScore(ctx context.Context) (int, error) {
	snap, err := s.GetSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	return snap.GateScore, nil
}

// GetSnapshot returns the full market condition snapshot
func (s *Source) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	cacheKey := redis.RegimeKey(s.now().Format("2006-01-02"))

	var cached Snapshot
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	kospi, err := s.krx.FetchIndexQuote(ctx, "KOSPI")
	if err != nil {
		return nil, err
	}
	kosdaq, err := s.krx.FetchIndexQuote(ctx, "KOSDAQ")
	if err != nil {
		return nil, err
	}

	score := CalcScore(kospi.ChangePct, kosdaq.ChangePct)

	snap := &Snapshot{
		Status:         gates.RegimeStatus(score),
		KospiValue:     kospi.Value,
		KospiChangePct: kospi.ChangePct,
		KosdaqValue:    kosdaq.Value,
		KosdaqChange:   kosdaq.ChangePct,
		GateScore:      score,
		Recommendation: gates.RegimeRecommendation(score),
		GeneratedAt:    s.now().Format(time.RFC3339),
	}

	// 시장 전체 외인 순매수는 부가 정보: 실패해도 스냅샷은 유효
	if trend, err := s.krx.FetchMarketTrend(ctx, "KOSPI"); err == nil && trend != nil {
		snap.ForeignNet = trend.ForeignNet
	}

	if err := s.cache.Set(ctx, cacheKey, snap, redis.TTLShort); err != nil {
		s.logger.WithError(err).Warn("Failed to cache regime snapshot")
	}

	s.logger.WithFields(map[string]interface{}{
		"score":  score,
		"status": snap.Status,
		"kospi":  kospi.ChangePct,
		"kosdaq": kosdaq.ChangePct,
	}).Info("Computed market regime")
	return snap, nil
}

// CalcScore blends index performance and breadth into a 0-100 score.
// 기준선 50에서 지수 등락률과 동반 방향성에 따라 가감한다.
func CalcScore(kospiChangePct, kosdaqChangePct float64) int {
	score := 50

	// KOSPI 기여 (최대 ±20)
	switch {
	case kospiChangePct > 1.5:
		score += 20
	case kospiChangePct > 0.5:
		score += 10
	case kospiChangePct < -1.5:
		score -= 20
	case kospiChangePct < -0.5:
		score -= 10
	}

	// KOSDAQ 기여 (최대 ±20)
	switch {
	case kosdaqChangePct > 2.0:
		score += 20
	case kosdaqChangePct > 0.5:
		score += 10
	case kosdaqChangePct < -2.0:
		score -= 20
	case kosdaqChangePct < -0.5:
		score -= 10
	}

	// 동반 상승/하락 가산점
	if kospiChangePct > 0 && kosdaqChangePct > 0 {
		score += 10
	} else if kospiChangePct < 0 && kosdaqChangePct < 0 {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
