package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/nice/internal/contracts"
	"github.com/wonny/nice/pkg/logger"
)

// 패킷 메타데이터 상수
const (
	packetVersion = "1.0"
	engineName    = "KR-NICE-vPerfect"
)

// Ledger records one immutable evidence packet per signal decision.
// Write failures are logged and swallowed: evidence capture is
// best-effort and must never block signal emission.
// ⭐ SSOT: 증거 패킷 스키마와 키 규칙은 이 파일에만 존재
type Ledger struct {
	store contracts.EvidenceStore
	log   *logger.Logger
	now   func() time.Time
}

// NewLedger creates a ledger on top of a packet store
func NewLedger(store contracts.EvidenceStore, log *logger.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Record serializes one decision into a packet and writes it under a
// key of the form {YYYYMMDD}/{ticker}_{HHMMSS}. Keys never collide:
// a same-second re-evaluation of the same ticker gets a numeric suffix.
// Returns the storage key even when the write failed.
func (l *Ledger) Record(ctx context.Context, ticker string, gates map[string]contracts.GateResult, plan *contracts.OrderPlan, finalScore int) string {
	now := l.now()

	packet := &contracts.EvidencePacket{
		Version:       packetVersion,
		Timestamp:     now,
		Ticker:        ticker,
		FinalScore:    finalScore,
		Gates:         gates,
		ExecutionPlan: plan,
		Metadata: map[string]string{
			"engine":       engineName,
			"gate_weights": "standard",
		},
	}

	key := l.uniqueKey(ticker, now)
	if err := l.store.Put(ctx, key, packet); err != nil {
		l.log.WithError(err).WithField("ticker", ticker).
			Warn("Failed to write evidence packet")
	}
	return key
}

// uniqueKey builds the day-partitioned key, suffixing on collision
func (l *Ledger) uniqueKey(ticker string, now time.Time) string {
	base := fmt.Sprintf("%s/%s_%s", now.Format("20060102"), ticker, now.Format("150405"))

	key := base
	for seq := 1; l.store.Exists(key); seq++ {
		key = fmt.Sprintf("%s_%d", base, seq)
	}
	return key
}
