package signalstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/nice/internal/contracts"
)

// Repository persists the ranked signal set in PostgreSQL.
// ⭐ SSOT: 시그널 영속화는 이 패키지에서만
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a signal repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ReplaceAll overwrites the signal set for one scan date in a single
// transaction. The prior cycle's rows vanish atomically with the new
// rows appearing, so readers never observe a half-written set.
func (r *Repository) ReplaceAll(ctx context.Context, date time.Time, signals []contracts.Signal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scan.signals WHERE signal_date = $1`, date.Format("2006-01-02")); err != nil {
		return fmt.Errorf("delete prior signals: %w", err)
	}

	query := `
		INSERT INTO scan.signals (
			ticker, name, market, sector, theme, strategy_mode,
			score, tech_score, is_palantir, is_palantir_mini,
			current_price, entry_price, stop_loss, tp1, tp2,
			quantity, time_stop_date, risk_reward_ratio,
			status, signal_date, rank, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21, NOW()
		)
	`

	for rank, s := range signals {
		_, err := tx.Exec(ctx, query,
			s.Ticker, s.Name, s.Market, s.Sector, s.Theme, s.StrategyMode,
			s.Score, s.TechScore, s.IsPalantir, s.IsMini,
			s.CurrentPrice, s.Plan.EntryPrice, s.Plan.StopLoss, s.Plan.TakeProfit1, s.Plan.TakeProfit2,
			s.Plan.Quantity, s.Plan.TimeStopDate, s.Plan.RiskRewardRatio,
			s.Status, s.SignalDate, rank+1,
		)
		if err != nil {
			return fmt.Errorf("insert signal for %s: %w", s.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit signals: %w", err)
	}
	return nil
}

// LoadOpen returns currently open signals ordered by rank
func (r *Repository) LoadOpen(ctx context.Context) ([]contracts.Signal, error) {
	query := `
		SELECT
			ticker, name, market, sector, theme, strategy_mode,
			score, tech_score, is_palantir, is_palantir_mini,
			current_price, entry_price, stop_loss, tp1, tp2,
			quantity, time_stop_date, risk_reward_ratio,
			status, signal_date
		FROM scan.signals
		WHERE status = $1
		ORDER BY signal_date DESC, rank ASC
	`

	rows, err := r.db.Query(ctx, query, contracts.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("query open signals: %w", err)
	}
	defer rows.Close()

	var signals []contracts.Signal
	for rows.Next() {
		var s contracts.Signal
		err := rows.Scan(
			&s.Ticker, &s.Name, &s.Market, &s.Sector, &s.Theme, &s.StrategyMode,
			&s.Score, &s.TechScore, &s.IsPalantir, &s.IsMini,
			&s.CurrentPrice, &s.Plan.EntryPrice, &s.Plan.StopLoss, &s.Plan.TakeProfit1, &s.Plan.TakeProfit2,
			&s.Plan.Quantity, &s.Plan.TimeStopDate, &s.Plan.RiskRewardRatio,
			&s.Status, &s.SignalDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		s.Plan.Ticker = s.Ticker
		s.Plan.Action = "BUY"
		signals = append(signals, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return signals, nil
}

// UpdateStatus moves one signal to a new lifecycle status
func (r *Repository) UpdateStatus(ctx context.Context, ticker, signalDate, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE scan.signals SET status = $1 WHERE ticker = $2 AND signal_date = $3`,
		status, ticker, signalDate,
	)
	if err != nil {
		return fmt.Errorf("update signal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("signal not found: %s@%s", ticker, signalDate)
	}
	return nil
}
