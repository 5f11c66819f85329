package db

import "time"

// Tick is one recorded price sample.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	At     time.Time `json:"at"`
}

// Trade is one executed buy or sell.
type Trade struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Gift is one gift credited to the portfolio.
type Gift struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	GiftName  string    `json:"gift_name"`
	CashAdded float64   `json:"cash_added"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardRow aggregates one user's contribution to the game.
type LeaderboardRow struct {
	User        string  `json:"user"`
	TradeVolume float64 `json:"trade_volume"`
	GiftValue   float64 `json:"gift_value"`
}
