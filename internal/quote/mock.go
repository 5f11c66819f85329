package quote

import (
	"context"
	"math/rand"
	"sync"
)

// Mock is a random-walk price source for local development.
type Mock struct {
	mu    sync.Mutex
	price float64
	step  float64
	floor float64
}

// NewMock starts a random walk at start, moving up to ±step per quote.
func NewMock(start, step float64) *Mock {
	if start <= 0 {
		start = 100
	}
	if step <= 0 {
		step = 0.5
	}
	return &Mock{price: start, step: step, floor: 1}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Quote(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.price += (rand.Float64()*2 - 1) * m.step
	if m.price < m.floor {
		m.price = m.floor
	}
	return m.price, nil
}
