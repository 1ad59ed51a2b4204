package guest

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is the in-process guest.KV used when REDIS_ADDR is not set (and in tests).
type MemoryKV struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memEntry
}

type memEntry struct {
	value   string
	expires time.Time // zero = never
}

func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{ttl: ttl, now: time.Now, data: map[string]memEntry{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	e := memEntry{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
