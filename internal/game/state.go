package game

import (
	"math"
	"sync"
	"time"
)

// Settings fixes the game parameters at startup.
type Settings struct {
	StockName       string
	InitialCash     float64
	HistoryDepth    int
	MilestoneStep   float64
	RewardThreshold float64
	RewardStep      float64
	RewardDebounce  time.Duration
	PriceFloor      float64
}

// PricePoint is one chart sample. Time is unix milliseconds, matching what the
// overlay client feeds into its chart.
type PricePoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// Snapshot is the full broadcast state. Field names are the wire contract.
type Snapshot struct {
	Cash            float64      `json:"cash"`
	Shares          float64      `json:"shares"`
	StockPrice      float64      `json:"stockPrice"`
	StockName       string       `json:"stockName"`
	TotalAssets     float64      `json:"totalAssets"`
	History         []PricePoint `json:"history"`
	RewardThreshold float64      `json:"rewardThreshold"`
	LastMilestone   float64      `json:"lastMilestone"`
	RewardTriggered bool         `json:"rewardTriggered"`
	PositionCost    float64      `json:"positionCost"`
	AvgShareCost    float64      `json:"avgShareCost"`
	PLAmount        float64      `json:"plAmount"`
	PLPercent       float64      `json:"plPercent"`
}

// State is the single shared portfolio. Every mutation takes the mutex, so the
// update loop, chat trades and gifts never overlap.
type State struct {
	mu       sync.Mutex
	settings Settings

	cash         float64
	shares       float64
	stockPrice   float64
	positionCost float64
	avgShareCost float64
	totalAssets  float64
	plAmount     float64
	plPercent    float64
	history      []PricePoint

	rewardThreshold float64
	lastMilestone   float64
	rewardTriggered bool
	rewardResetAt   time.Time
}

// NewState creates the portfolio in its opening position.
func NewState(s Settings) *State {
	if s.HistoryDepth <= 0 {
		s.HistoryDepth = 50
	}
	if s.MilestoneStep <= 0 {
		s.MilestoneStep = 100
	}
	if s.RewardStep <= 0 {
		s.RewardStep = 5000
	}
	if s.PriceFloor <= 0 {
		s.PriceFloor = 0.1
	}
	st := &State{settings: s}
	st.resetLocked()
	return st
}

func (s *State) resetLocked() {
	s.cash = s.settings.InitialCash
	s.shares = 0
	s.positionCost = 0
	s.avgShareCost = 0
	s.totalAssets = s.settings.InitialCash
	s.plAmount = 0
	s.plPercent = 0
	s.history = nil
	s.rewardThreshold = s.settings.RewardThreshold
	s.lastMilestone = math.Floor(s.settings.InitialCash/s.settings.MilestoneStep) * s.settings.MilestoneStep
	s.rewardTriggered = false
	s.rewardResetAt = time.Time{}
}

// Reset restores the opening position. The sticky price survives so the next
// cycle does not start from zero.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// SeedHistory preloads chart samples (newest last), e.g. from the journal after
// a restart. The last sample also seeds the sticky price.
func (s *State) SeedHistory(points []PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(points) > s.settings.HistoryDepth {
		points = points[len(points)-s.settings.HistoryDepth:]
	}
	s.history = append([]PricePoint(nil), points...)
	if n := len(s.history); n > 0 && s.stockPrice == 0 {
		s.stockPrice = s.history[n-1].Price
	}
}

// Price returns the last known stock price.
func (s *State) Price() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stockPrice
}

// Snapshot copies the current state for broadcasting.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Cash:            s.cash,
		Shares:          s.shares,
		StockPrice:      s.stockPrice,
		StockName:       s.settings.StockName,
		TotalAssets:     s.totalAssets,
		History:         append([]PricePoint(nil), s.history...),
		RewardThreshold: s.rewardThreshold,
		LastMilestone:   s.lastMilestone,
		RewardTriggered: s.rewardTriggered,
		PositionCost:    s.positionCost,
		AvgShareCost:    s.avgShareCost,
		PLAmount:        s.plAmount,
		PLPercent:       s.plPercent,
	}
}

// TickResult is what one update cycle produced.
type TickResult struct {
	Snapshot   Snapshot
	Milestones []float64 // crossed boundaries, ascending
	Reward     bool
}

// Advance runs one update cycle against a freshly fetched price. quoteOK=false
// keeps the sticky price (fetch failure). Returns the crossed milestones, the
// reward trigger, and the post-cycle snapshot.
func (s *State) Advance(now time.Time, price float64, quoteOK bool) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Debounce window elapsed: the reward may fire again.
	if s.rewardTriggered && !s.rewardResetAt.IsZero() && !now.Before(s.rewardResetAt) {
		s.rewardTriggered = false
		s.rewardResetAt = time.Time{}
	}

	if quoteOK && price > 0 {
		s.stockPrice = price
	}
	if s.stockPrice > 0 {
		s.stockPrice = round2(math.Max(s.settings.PriceFloor, s.stockPrice))
	}

	s.totalAssets = round2(s.cash + s.shares*s.stockPrice)
	s.recomputePositionLocked()

	s.history = append(s.history, PricePoint{Time: now.UnixMilli(), Price: s.stockPrice})
	if len(s.history) > s.settings.HistoryDepth {
		s.history = s.history[len(s.history)-s.settings.HistoryDepth:]
	}

	var milestones []float64
	step := s.settings.MilestoneStep
	current := math.Floor(s.totalAssets/step) * step
	for next := s.lastMilestone + step; next <= current; next += step {
		milestones = append(milestones, next)
		s.lastMilestone = next
	}

	reward := false
	if s.totalAssets > s.rewardThreshold && !s.rewardTriggered {
		reward = true
		s.rewardTriggered = true
		s.rewardResetAt = now.Add(s.settings.RewardDebounce)
		s.rewardThreshold += s.settings.RewardStep
	}

	return TickResult{
		Snapshot:   s.snapshotLocked(),
		Milestones: milestones,
		Reward:     reward,
	}
}

func (s *State) recomputePositionLocked() {
	if s.shares <= 0 {
		s.shares = 0
		s.positionCost = 0
		s.avgShareCost = 0
		s.plAmount = 0
		s.plPercent = 0
		return
	}
	s.avgShareCost = round2(s.positionCost / s.shares)
	value := s.shares * s.stockPrice
	pl := value - s.positionCost
	s.plAmount = round2(pl)
	if s.positionCost > 0 {
		s.plPercent = round2(pl / s.positionCost * 100)
	} else {
		s.plPercent = 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round6 bounds floating-point drift on share quantities.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
