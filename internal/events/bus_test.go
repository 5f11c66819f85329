package events

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(EventTrade, 4)
	defer unsub()

	bus.Publish(EventTrade, "hello")

	select {
	case msg := <-ch:
		if msg != "hello" {
			t.Fatalf("got %v, want hello", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(EventChat, 1)
	unsub()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(EventChat, "late")
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	_, unsub := bus.Subscribe(EventStateUpdate, 1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(EventStateUpdate, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestSubscribeAllMergesTopics(t *testing.T) {
	bus := NewBus()
	merged, unsub := bus.SubscribeAll([]Event{EventTrade, EventGift}, 8)

	bus.Publish(EventTrade, 1)
	bus.Publish(EventGift, 2)

	got := map[Event]any{}
	for i := 0; i < 2; i++ {
		select {
		case env := <-merged:
			got[env.Event] = env.Data
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for merged events")
		}
	}
	if got[EventTrade] != 1 || got[EventGift] != 2 {
		t.Fatalf("merged stream missing topics: %v", got)
	}

	unsub()
	for range merged {
		// drain until close
	}
}
