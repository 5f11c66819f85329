package game

import (
	"context"
	"log"
	"time"

	"stockparty/internal/events"
	"stockparty/internal/monitor"
	"stockparty/internal/quote"
	"stockparty/pkg/db"
)

// Loop drives the game: one cycle per interval, next cycle scheduled only
// after the previous one fully completes, so a slow quote fetch delays the
// cadence instead of overlapping it.
type Loop struct {
	State    *State
	Source   quote.Source
	Bus      *events.Bus
	Journal  *db.Database // optional
	Metrics  *monitor.SystemMetrics
	Symbol   string
	Interval time.Duration
}

// Run blocks until ctx is cancelled. The first cycle fires immediately.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			l.cycle(ctx)
			timer.Reset(interval)
		}
	}
}

func (l *Loop) cycle(ctx context.Context) {
	t := monitor.NewTimer(l.Metrics.QuoteLatency)
	price, err := l.Source.Quote(ctx)
	t.Stop()
	if err != nil {
		// Non-fatal: the loop keeps running on the sticky price.
		log.Printf("[QUOTE] %s fetch %s: %v", l.Source.Name(), l.Symbol, err)
		l.Metrics.IncrementQuoteErrors()
	}

	res := l.State.Advance(time.Now(), price, err == nil)

	for _, boundary := range res.Milestones {
		l.Bus.Publish(events.EventMilestone, NewMilestoneEvent(boundary))
		if l.Journal != nil {
			if err := l.Journal.InsertMilestone(ctx, boundary); err != nil {
				log.Printf("[LOOP] record milestone: %v", err)
			}
		}
	}

	if res.Reward {
		l.Bus.Publish(events.EventRewardTrigger, NewRewardEvent())
	}

	l.Bus.Publish(events.EventStateUpdate, res.Snapshot)
	l.Metrics.IncrementTicks()

	if l.Journal != nil && res.Snapshot.StockPrice > 0 {
		if err := l.Journal.InsertTick(ctx, l.Symbol, res.Snapshot.StockPrice, time.Now()); err != nil {
			log.Printf("[LOOP] record tick: %v", err)
		}
	}
}
