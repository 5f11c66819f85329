package game

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Broadcast payloads. Field names are the wire contract with the overlay.

type ChatEvent struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type TradeEvent struct {
	User   string  `json:"user"`
	Action string  `json:"action"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

type GiftEvent struct {
	User      string  `json:"user"`
	GiftName  string  `json:"giftName"`
	CashAdded float64 `json:"cashAdded"`
}

type MilestoneEvent struct {
	Message     string  `json:"message"`
	TotalAssets float64 `json:"totalAssets"`
}

type RewardEvent struct {
	Message string `json:"message"`
}

// NewMilestoneEvent formats the celebratory message for a crossed boundary.
func NewMilestoneEvent(boundary float64) MilestoneEvent {
	return MilestoneEvent{
		Message:     fmt.Sprintf("🎉 ASSETS SURPASSED $%s!", humanize.Commaf(boundary)),
		TotalAssets: boundary,
	}
}

// NewRewardEvent is the big-celebration payload for a crossed reward threshold.
func NewRewardEvent() RewardEvent {
	return RewardEvent{Message: "🎉 TARGET REACHED! BONUS RELEASED!"}
}
