package repository

import (
	"context"
	"sync"
	"time"
)

// memorySweepInterval is how often Set scans for expired entries
const memorySweepInterval = time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process key-value store, used for tests and single-node development
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

// Ensure MemoryStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty MemoryStore that expires entries against now
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: now}
}

// Get returns a copy of the stored value or ErrNotFound. Expired entries are deleted.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		return nil, ErrNotFound
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

// Set stores a copy of value under key
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Len returns the number of entries held, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sweep drops expired entries at most once per memorySweepInterval. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
	m.nextSweep = now.Add(memorySweepInterval)
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Delete removes key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
