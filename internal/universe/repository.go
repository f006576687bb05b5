package universe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/nice/internal/contracts"
)

// Repository manages the scan universe in PostgreSQL.
// ⭐ SSOT: scan.universe 테이블이 스캔 대상 종목의 단일 진실 소스.
type Repository struct {
	db    *pgxpool.Pool
	limit int
}

// NewRepository creates a universe repository.
// limit caps the instrument count per cycle (0 means no cap).
func NewRepository(db *pgxpool.Pool, limit int) *Repository {
	return &Repository{db: db, limit: limit}
}

// ListInstruments returns active instruments ordered by market cap
// descending, so a capped scan covers the largest names first.
func (r *Repository) ListInstruments(ctx context.Context) ([]contracts.Instrument, error) {
	query := `
		SELECT
			ticker,
			name,
			market,
			COALESCE(sector, ''),
			market_cap_bln
		FROM scan.universe
		WHERE is_active = true
		ORDER BY market_cap_bln DESC
	`
	if r.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", r.limit)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query universe: %w", err)
	}
	defer rows.Close()

	var instruments []contracts.Instrument
	for rows.Next() {
		var inst contracts.Instrument
		if err := rows.Scan(&inst.Ticker, &inst.Name, &inst.Market, &inst.Sector, &inst.MarketCap); err != nil {
			return nil, fmt.Errorf("scan universe row: %w", err)
		}
		instruments = append(instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universe rows: %w", err)
	}

	return instruments, nil
}

// SaveInstruments upserts the instrument table from an exchange
// listing snapshot. Tickers absent from the snapshot are deactivated,
// not deleted, so history stays joinable.
func (r *Repository) SaveInstruments(ctx context.Context, instruments []contracts.Instrument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE scan.universe SET is_active = false`); err != nil {
		return fmt.Errorf("deactivate universe: %w", err)
	}

	query := `
		INSERT INTO scan.universe (ticker, name, market, sector, market_cap_bln, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			market = EXCLUDED.market,
			sector = EXCLUDED.sector,
			market_cap_bln = EXCLUDED.market_cap_bln,
			is_active = true,
			updated_at = NOW()
	`

	for _, inst := range instruments {
		if _, err := tx.Exec(ctx, query, inst.Ticker, inst.Name, inst.Market, inst.Sector, inst.MarketCap); err != nil {
			return fmt.Errorf("upsert instrument %s: %w", inst.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit universe: %w", err)
	}
	return nil
}
