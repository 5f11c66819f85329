package game

import "math"

// Buy converts a dollar amount into shares at the current price.
// Returns false (no state change) when the price is unknown or cash is short.
func (s *State) Buy(amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stockPrice <= 0 || amount <= 0 || s.cash < amount {
		return false
	}

	sharesToBuy := amount / s.stockPrice
	s.cash -= amount
	s.shares = round6(s.shares + sharesToBuy)
	s.positionCost = round2(s.positionCost + amount)
	return true
}

// Sell liquidates a dollar amount of the position at the current price.
// Rejects when the held shares cannot cover the requested amount.
func (s *State) Sell(amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stockPrice <= 0 || amount <= 0 {
		return false
	}
	sharesToSell := amount / s.stockPrice
	if s.shares < sharesToSell {
		return false
	}

	avgCost := 0.0
	if s.shares > 0 {
		avgCost = s.positionCost / s.shares
	}
	s.shares -= sharesToSell
	s.cash += amount
	s.positionCost = round2(math.Max(0, s.positionCost-avgCost*sharesToSell))
	if s.shares <= 0 {
		s.shares = 0
		s.positionCost = 0
	}
	s.shares = round6(s.shares)
	return true
}

// Gift credits a gift's value straight to cash, 1:1, and returns the amount
// added. Position metrics catch up on the next cycle.
func (s *State) Gift(value float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cash += value
	return value
}
