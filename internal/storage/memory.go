package storage

import (
	"context"
	"sync"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// Memory keeps the encoded document in memory. It goes through the same
// codec as the durable backends.
type Memory struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

func NewMemory(seed ...core.Transaction) *Memory {
	m := &Memory{}
	if len(seed) > 0 {
		if b, err := Encode(seed); err == nil {
			m.payload = b
		}
	}
	return m
}

func (m *Memory) Load(ctx context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeLogged(ctx, m.payload, log.Default().WithComponent(log.ComponentStorage))
}

func (m *Memory) Save(_ context.Context, txs []core.Transaction) error {
	b, err := Encode(txs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = b
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
