package storage

import (
	"sync"
	"time"
)

type memoryEntry struct {
	digest string
	expiry time.Time
}

// memoryStore is a process-local Store, used by one-shot runs and tests.
type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		ttl:     opts.SnapshotTTL,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Changed(watchID, digest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[watchID]
	if !ok {
		return true, nil
	}
	if !e.expiry.After(m.now()) {
		delete(m.entries, watchID)
		return true, nil
	}
	return e.digest != digest, nil
}

func (m *memoryStore) Record(watchID, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[watchID] = memoryEntry{digest: digest, expiry: m.now().Add(m.ttl)}
	return nil
}
