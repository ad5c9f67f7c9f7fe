package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

// Memory is an in-process store for tests and redis-less deployments.
// Expired entries are evicted lazily on access.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttls    TTLConfig
	now     func() time.Time
}

func NewMemory(ttls TTLConfig) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttls:    ttls,
		now:     time.Now,
	}
}

func (m *Memory) get(ns Namespace, key string) (memoryEntry, bool) {
	k := redisKey(ns, key)
	entry, ok := m.entries[k]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, k)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *Memory) Get(_ context.Context, ns Namespace, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.get(ns, key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, entry.value...), nil
}

func (m *Memory) Set(_ context.Context, ns Namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: append([]byte{}, value...)}
	if ttl := m.ttls.For(ns); ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[redisKey(ns, key)] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, ns Namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, redisKey(ns, key))
	return nil
}

func (m *Memory) Refresh(_ context.Context, ns Namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.get(ns, key)
	if !ok {
		return ErrNotFound
	}
	if ttl := m.ttls.For(ns); ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[redisKey(ns, key)] = entry
	return nil
}
