package cache

import (
	"context"
	"sync"
	"time"

	"github.com/addons-front/listing-api/internal/card"
)

type memoryEntry struct {
	card      card.Card
	expiresAt time.Time
}

// MemoryCache is an in-process CardCache used when no redis is configured.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[uint64]memoryEntry
	generation int64
	stamps     map[uint64]int64
	now        func() time.Time
}

// NewMemoryCache constructs a MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[uint64]memoryEntry),
		stamps:  make(map[uint64]int64),
		now:     time.Now,
	}
}

// Token returns the current generation and stamp of versionID.
func (m *MemoryCache) Token(_ context.Context, versionID uint64) (Token, error) {
	if m == nil {
		return Token{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Token{Generation: m.generation, Stamp: m.stamps[versionID]}, nil
}

// Get returns the cached card for versionID when present and not expired.
func (m *MemoryCache) Get(_ context.Context, versionID uint64) (card.Card, bool, error) {
	if m == nil {
		return card.Card{}, false, nil
	}
	m.mu.RLock()
	entry, ok := m.entries[versionID]
	m.mu.RUnlock()
	if !ok {
		return card.Card{}, false, nil
	}
	if !entry.expiresAt.After(m.now()) {
		m.mu.Lock()
		if current, still := m.entries[versionID]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, versionID)
		}
		m.mu.Unlock()
		return card.Card{}, false, nil
	}
	return entry.card, true, nil
}

// Set stores c for ttl. It is a no-op for a non-positive ttl or a stale token.
func (m *MemoryCache) Set(_ context.Context, versionID uint64, token Token, c card.Card, ttl time.Duration) error {
	if m == nil || ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.Generation != m.generation || token.Stamp != m.stamps[versionID] {
		return nil
	}
	m.entries[versionID] = memoryEntry{card: c, expiresAt: m.now().Add(ttl)}
	return nil
}

// Invalidate drops the entry for versionID and outdates its tokens.
func (m *MemoryCache) Invalidate(_ context.Context, versionID uint64) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	delete(m.entries, versionID)
	m.stamps[versionID]++
	m.mu.Unlock()
	return nil
}

// Flush drops every entry and outdates every token.
func (m *MemoryCache) Flush(_ context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	m.entries = make(map[uint64]memoryEntry)
	m.stamps = make(map[uint64]int64)
	m.generation++
	m.mu.Unlock()
	return nil
}
