package contracts

import (
	"context"
	"time"
)

// MarketDataProvider supplies daily price history.
// An empty history means "no data" and must be handled as skip, not error.
type MarketDataProvider interface {
	GetHistory(ctx context.Context, ticker string, from, to time.Time) (PriceHistory, error)
}

// RegimeSource supplies the market-wide condition score (0-100)
type RegimeSource interface {
	GetRegimeScore(ctx context.Context) (int, error)
}

// FlowSource supplies 5-day investor net flow. Returns an error when no
// real data exists; the caller decides whether a proxy substitutes.
// ⭐ SSOT: 실수급 조회는 이 인터페이스 뒤에서만
type FlowSource interface {
	GetFlowMetrics(ctx context.Context, ticker string, history PriceHistory) (FlowMetrics, error)
}

// UniverseSource lists the instruments to scan, ordered
type UniverseSource interface {
	ListInstruments(ctx context.Context) ([]Instrument, error)
}

// ThemeSource is a read-only theme tag lookup
type ThemeSource interface {
	GetTag(ticker string) string // empty when untagged
}

// SignalStore persists the ranked signal set. ReplaceAll overwrites the
// prior cycle's set in one transaction, all or nothing.
type SignalStore interface {
	ReplaceAll(ctx context.Context, date time.Time, signals []Signal) error
	LoadOpen(ctx context.Context) ([]Signal, error)
}

// EvidenceStore is an append-only packet store keyed by day/ticker/time.
// Put must never overwrite an existing key.
type EvidenceStore interface {
	Put(ctx context.Context, key string, packet *EvidencePacket) error
	Exists(key string) bool
}
