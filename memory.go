package contentcache

import "sync"

// memoryCache is the process-local tier: fully materialized results keyed
// by their formatted-artifact name. Entries are inserted only on
// successful resolution and are only ever removed wholesale.
type memoryCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

func newMemoryCache[V any]() *memoryCache[V] {
	return &memoryCache[V]{entries: make(map[string]V)}
}

func (m *memoryCache[V]) get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memoryCache[V]) set(key string, v V) {
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
}

func (m *memoryCache[V]) removeAll() {
	m.mu.Lock()
	m.entries = make(map[string]V)
	m.mu.Unlock()
}
