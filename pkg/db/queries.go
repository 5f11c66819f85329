// Package db persists the game journal: price ticks, trades, gifts and
// milestone crossings.
package db

import (
	"context"
	"fmt"
	"time"
)

// InsertTick records a price sample.
func (d *Database) InsertTick(ctx context.Context, symbol string, price float64, at time.Time) error {
	_, err := d.DB.ExecContext(ctx,
		`INSERT INTO ticks (symbol, price, at) VALUES (?, ?, ?)`,
		symbol, price, at.UTC())
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}
	return nil
}

// RecentTicks returns the newest limit ticks for a symbol, oldest first.
func (d *Database) RecentTicks(ctx context.Context, symbol string, limit int) ([]Tick, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT symbol, price, at FROM (
			SELECT symbol, price, at FROM ticks
			WHERE symbol = ?
			ORDER BY at DESC, id DESC
			LIMIT ?
		) ORDER BY at ASC
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	var ticks []Tick
	for rows.Next() {
		var t Tick
		if err := rows.Scan(&t.Symbol, &t.Price, &t.At); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

// InsertTrade records an executed trade.
func (d *Database) InsertTrade(ctx context.Context, t Trade) error {
	_, err := d.DB.ExecContext(ctx,
		`INSERT INTO trades (id, user, action, amount, price) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.User, t.Action, t.Amount, t.Price)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// ListTrades returns the newest trades first.
func (d *Database) ListTrades(ctx context.Context, limit int) ([]Trade, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, user, action, amount, price, created_at
		FROM trades ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.User, &t.Action, &t.Amount, &t.Price, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// InsertGift records a credited gift.
func (d *Database) InsertGift(ctx context.Context, g Gift) error {
	_, err := d.DB.ExecContext(ctx,
		`INSERT INTO gifts (id, user, gift_name, cash_added) VALUES (?, ?, ?, ?)`,
		g.ID, g.User, g.GiftName, g.CashAdded)
	if err != nil {
		return fmt.Errorf("insert gift: %w", err)
	}
	return nil
}

// ListGifts returns the newest gifts first.
func (d *Database) ListGifts(ctx context.Context, limit int) ([]Gift, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, user, COALESCE(gift_name, ''), cash_added, created_at
		FROM gifts ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query gifts: %w", err)
	}
	defer rows.Close()

	var gifts []Gift
	for rows.Next() {
		var g Gift
		if err := rows.Scan(&g.ID, &g.User, &g.GiftName, &g.CashAdded, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		gifts = append(gifts, g)
	}
	return gifts, rows.Err()
}

// InsertMilestone records a crossed asset-value boundary.
func (d *Database) InsertMilestone(ctx context.Context, totalAssets float64) error {
	_, err := d.DB.ExecContext(ctx,
		`INSERT INTO milestones (total_assets) VALUES (?)`, totalAssets)
	if err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}
	return nil
}

// Leaderboard aggregates traded volume and gifted value per user,
// ordered by combined contribution.
func (d *Database) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT user,
		       SUM(trade_volume) AS trade_volume,
		       SUM(gift_value)   AS gift_value
		FROM (
			SELECT user, amount AS trade_volume, 0 AS gift_value FROM trades
			UNION ALL
			SELECT user, 0, cash_added FROM gifts
		)
		GROUP BY user
		ORDER BY trade_volume + gift_value DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.User, &r.TradeVolume, &r.GiftValue); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneTicks deletes samples older than the cutoff, returning rows removed.
func (d *Database) PruneTicks(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.DB.ExecContext(ctx, `DELETE FROM ticks WHERE at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune ticks: %w", err)
	}
	return res.RowsAffected()
}
