package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"skillbridge/internal/cache"
	"skillbridge/internal/generation"
	"skillbridge/internal/httpserver"
	"skillbridge/internal/llm"
	"skillbridge/internal/resolver"
	"skillbridge/internal/store"
	"skillbridge/pkg/logging"
)

const cachePrefix = "skillbridge"

// deps is everything the commands share. close releases it in reverse
// order of construction.
type deps struct {
	store     *store.SQLiteStore
	resolver  *resolver.Resolver
	generator *generation.Service
	health    httpserver.PingAll
	closers   []func() error
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

func newLogger(cfg Config) (*zap.Logger, error) {
	opts := logging.OptionsFromEnv("skillbridge")
	opts.Env = cfg.Env
	return logging.NewLogger(opts)
}

func buildDeps(ctx context.Context, cfg Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}

	s, err := store.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	d.store = s
	d.health = append(d.health, s)
	d.closers = append(d.closers, s.Close)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == cache.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		d.closers = append(d.closers, redisClient.Close)

		rs := cache.NewRedisStore(redisClient, cache.RedisConfig{Prefix: cachePrefix})
		// fail fast if Redis is misconfigured
		if err := rs.Ping(ctx); err != nil {
			d.close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		d.health = append(d.health, rs)
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	cacheCfg := cache.Config{
		Backend:    cfg.CacheBackend,
		TTL:        cfg.CacheTTL,
		MaxEntries: cfg.CacheMaxEntries,
		Prefix:     cachePrefix,
	}
	results := cache.NewStore(cacheCfg, redisClient)
	recommendations := cache.NewStore(cacheCfg, redisClient)
	for _, c := range []cache.Store{results, recommendations} {
		if closer, ok := c.(interface{ Close() error }); ok {
			d.closers = append(d.closers, closer.Close)
		}
	}

	d.resolver = resolver.New(s, cache.NewLoggingStore(results, "resolver"), cfg.CacheTTL)

	primary, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		d.close()
		return nil, err
	}
	d.generator = generation.NewService(
		cache.NewLoggingStore(recommendations, "generation"),
		primary,
		generation.Config{CacheTTL: cfg.CacheTTL, GenerateTimeout: cfg.GenerateTimeout},
	)
	return d, nil
}

func newGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (generation.Generator, error) {
	switch cfg.Generator {
	case GeneratorOpenAI:
		client, err := llm.NewClient(llm.Config{
			BaseURL:    cfg.LLMBaseURL,
			APIKey:     cfg.LLMAPIKey,
			Model:      cfg.LLMModel,
			MaxRetries: cfg.LLMMaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("generator ready", zap.String("backend", GeneratorOpenAI), zap.String("base_url", cfg.LLMBaseURL))
		return generation.NewChatGenerator(client, cfg.LLMModel), nil

	case GeneratorGemini:
		g, err := generation.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		logger.Info("generator ready", zap.String("backend", GeneratorGemini))
		return g, nil

	default:
		logger.Info("no generator configured, recommendations use the fallback")
		return generation.Disabled(), nil
	}
}
