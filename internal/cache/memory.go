package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often MemoryStore sweeps expired entries.
const DefaultCleanupInterval = 5 * time.Minute

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store. Expired entries are hidden on read and
// removed by a background sweeper until Close is called.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memEntry

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore starts the cleanup goroutine; interval <= 0 uses DefaultCleanupInterval.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	s := &MemoryStore{
		items: make(map[string]memEntry),
		stop:  make(chan struct{}),
	}
	go s.cleanup(interval)
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || entry.expired(time.Now()) {
		return nil, false, nil
	}
	return cloneBytes(entry.value), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memEntry{value: cloneBytes(value)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len counts live entries.
func (s *MemoryStore) Len() int {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.items {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.items = make(map[string]memEntry)
	s.mu.Unlock()
}

// Close stops the cleanup goroutine. The store stays usable.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purgeExpired(time.Now())
		}
	}
}

func (s *MemoryStore) purgeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.items {
		if entry.expired(now) {
			delete(s.items, key)
		}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
