package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with the same expiry rules as Redis. Now can
// be replaced to move time forward in tests.
type Memory struct {
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	writes  int
}

type entry struct {
	value   string
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{Now: time.Now, entries: map[string]entry{}}
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expires: m.Now().Add(ttl)}
	m.writes++
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.Now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Writes is the number of successful Set calls so far.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var _ Store = &Memory{}
