package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SwingRadar/internal/domain/models"
	drepo "SwingRadar/internal/domain/repository"
	"SwingRadar/pkg/clickhouse"
)

const signalsSchema = `
CREATE TABLE IF NOT EXISTS swing_signals (
	id String,
	pair String,
	exchange String,
	classification String,
	price Float64,
	probability Float64,
	confidence Float64,
	entry Float64,
	stop_loss Float64,
	take_profit Float64,
	risk_level String,
	horizon String,
	created_at DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (pair, created_at)
TTL toDateTime(created_at) + INTERVAL 90 DAY
`

// ClickHouseSignals stores emitted trading signals for later review.
// Inserts are best-effort; the caller logs failures and moves on.
type ClickHouseSignals struct {
	client *clickhouse.Client
}

func NewClickHouseSignals(ctx context.Context, client *clickhouse.Client) (*ClickHouseSignals, error) {
	if err := client.InitSchema(ctx, []string{signalsSchema}); err != nil {
		return nil, fmt.Errorf("signals schema: %w", err)
	}
	return &ClickHouseSignals{client: client}, nil
}

func (r *ClickHouseSignals) InsertSignals(ctx context.Context, signals []models.TradingSignal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := r.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO swing_signals
		(id, pair, exchange, classification, price, probability, confidence,
		 entry, stop_loss, take_profit, risk_level, horizon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range signals {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.Pair, s.Exchange, string(s.Classification),
			s.Price, s.Probability, s.Confidence,
			s.Entry, s.StopLoss, s.TakeProfit,
			string(s.RiskLevel), s.Horizon, s.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert signal %s: %w", s.Pair, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// RecentSignals returns the newest signals, optionally filtered by
// pair and a created_at window. Zero bounds are unbounded.
func (r *ClickHouseSignals) RecentSignals(ctx context.Context, pair string, from, to time.Time, limit int) ([]models.TradingSignal, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, pair, exchange, classification, price, probability, confidence,
		entry, stop_loss, take_profit, risk_level, horizon, created_at
		FROM swing_signals`
	var conds []string
	args := make([]any, 0, 4)
	if pair != "" {
		conds = append(conds, `pair = ?`)
		args = append(args, pair)
	}
	if !from.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, from)
	}
	if !to.IsZero() {
		conds = append(conds, `created_at <= ?`)
		args = append(args, to)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []models.TradingSignal
	for rows.Next() {
		var s models.TradingSignal
		var cls, risk string
		var created time.Time
		if err := rows.Scan(&s.ID, &s.Pair, &s.Exchange, &cls, &s.Price, &s.Probability, &s.Confidence,
			&s.Entry, &s.StopLoss, &s.TakeProfit, &risk, &s.Horizon, &created); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		s.Classification = models.Classification(cls)
		s.RiskLevel = models.RiskLevel(risk)
		s.CreatedAt = created
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ drepo.SignalHistory = (*ClickHouseSignals)(nil)
