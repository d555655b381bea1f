package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int
	Prefix     string
}

// NewStore picks the backend named in cfg. Anything other than "redis"
// (or a nil client) yields a MemoryStore.
func NewStore(cfg Config, redisClient *redis.Client) Store {
	if cfg.Backend == BackendRedis && redisClient != nil {
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	}
	return NewMemoryStore(MemoryConfig{
		MaxEntries: cfg.MaxEntries,
		TTL:        cfg.TTL,
	})
}
