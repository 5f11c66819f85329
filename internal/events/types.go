package events

// Event enumerates the broadcast topics of the game. The values are the
// wire-level event names the overlay client listens for.
type Event string

const (
	EventStateUpdate   Event = "state_update"
	EventChat          Event = "chat_event"
	EventTrade         Event = "trade_event"
	EventGift          Event = "gift_event"
	EventMilestone     Event = "milestone_event"
	EventRewardTrigger Event = "reward_trigger"
)

// Broadcast lists every topic a viewer connection subscribes to.
var Broadcast = []Event{
	EventStateUpdate,
	EventChat,
	EventTrade,
	EventGift,
	EventMilestone,
	EventRewardTrigger,
}
