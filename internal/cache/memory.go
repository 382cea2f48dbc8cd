package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Entries beyond capacity are evicted least
// recently used first; expired entries are dropped on read.
type Memory struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

func NewMemory(capacity int) (*Memory, error) {
	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &Memory{entries: entries, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string, dst any) error {
	e, ok := m.entries.Get(key)
	if !ok {
		return ErrMiss
	}
	if !m.now().Before(e.expiresAt) {
		m.entries.Remove(key)
		return ErrMiss
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	m.entries.Add(key, entry{data: data, expiresAt: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Purge(_ context.Context) error {
	m.entries.Purge()
	return nil
}

func (m *Memory) Len() int {
	return m.entries.Len()
}
