package events

import (
	"sync"
)

// Bus is a lightweight pub/sub broker using channels. The game loop and the
// HTTP handlers publish; websocket viewers subscribe.
type Bus struct {
	mu   sync.RWMutex
	subs map[Event][]chan any
}

// Envelope pairs a topic with its payload for merged subscriptions.
type Envelope struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Event][]chan any)}
}

// Subscribe registers a listener for an event and returns the channel and an
// unsubscribe function.
func (b *Bus) Subscribe(e Event, buffer int) (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan any, buffer)
	b.subs[e] = append(b.subs[e], ch)

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[e]
		for i, c := range subs {
			if c == ch {
				close(c)
				b.subs[e] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}

	return ch, unsub
}

// SubscribeAll merges several topics into one envelope stream. The returned
// unsubscribe function detaches every underlying subscription; the merged
// channel closes once all of them have drained.
func (b *Bus) SubscribeAll(topics []Event, buffer int) (<-chan Envelope, func()) {
	out := make(chan Envelope, buffer)
	unsubs := make([]func(), 0, len(topics))

	var wg sync.WaitGroup
	for _, topic := range topics {
		ch, unsub := b.Subscribe(topic, buffer)
		unsubs = append(unsubs, unsub)

		wg.Add(1)
		go func(topic Event, ch <-chan any) {
			defer wg.Done()
			for msg := range ch {
				select {
				case out <- Envelope{Event: topic, Data: msg}:
				default:
					// drop if the merged consumer is slow
				}
			}
		}(topic, ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
		})
	}
}

// Publish fan-outs the payload to subscribers asynchronously to avoid blocking.
func (b *Bus) Publish(e Event, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[e] {
		select {
		case ch <- payload:
		default:
			// drop if subscriber is slow; keep broker non-blocking
		}
	}
}
