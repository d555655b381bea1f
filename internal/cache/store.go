package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache used by the resolver and the generation
// cache. Implemented by MemoryStore (single process) and RedisStore (shared).
//
// A ttl <= 0 on Set means the entry never expires on its own.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
