package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero => only the store-wide TTL applies
}

// MemoryStore is an in-process Store backed by an expirable LRU. The
// store-wide TTL and size bound come from MemoryConfig; a shorter ttl passed
// to Set is enforced per entry on read.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

type MemoryConfig struct {
	// MaxEntries bounds the store; 0 means unbounded.
	MaxEntries int
	// TTL expires every entry this long after it was set; 0 means never.
	TTL time.Duration
}

func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0
	}
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](cfg.MaxEntries, nil, cfg.TTL),
		now: time.Now,
	}
}

func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if c.expired(entry) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set overwrites any existing entry for key. ttl <= 0 leaves only the
// store-wide TTL.
func (c *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// Copy to decouple from caller's buffer
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, entry)
	return nil
}

// Has does not refresh recency.
func (c *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	entry, ok := c.lru.Peek(key)
	if !ok {
		return false, nil
	}
	if c.expired(entry) {
		c.lru.Remove(key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// Close drops every entry.
func (c *MemoryStore) Close() error {
	c.lru.Purge()
	return nil
}

// Len returns the number of items currently in the cache, expired entries
// not yet swept included.
func (c *MemoryStore) Len() int {
	return c.lru.Len()
}

// Clear removes all items from cache.
func (c *MemoryStore) Clear() {
	c.lru.Purge()
}
