package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	GeneratorOpenAI = "openai"
	GeneratorGemini = "gemini"
	GeneratorNone   = "none"
)

type Config struct {
	Port            string
	Env             string
	DBPath          string
	CacheBackend    string // "memory" or "redis"
	RedisAddr       string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RequestTimeout  time.Duration

	Generator       string // "openai", "gemini" or "none"
	GenerateTimeout time.Duration
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	LLMMaxRetries   int
	GeminiAPIKey    string
	GeminiModel     string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		Env:          getenv("ENV", "production"),
		DBPath:       getenv("DB_PATH", "data/skillbridge.db"),
		CacheBackend: strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		Generator:    strings.ToLower(getenv("GENERATOR", GeneratorNone)),
		LLMBaseURL:   getenv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
	}

	var err error
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.GenerateTimeout, err = durationEnv("GENERATE_TIMEOUT", 60*time.Second); err != nil {
		return cfg, err
	}
	if cfg.CacheMaxEntries, err = intEnv("CACHE_MAX_ENTRIES", 10000); err != nil {
		return cfg, err
	}
	if cfg.LLMMaxRetries, err = intEnv("LLM_MAX_RETRIES", 0); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}

	switch c.Generator {
	case GeneratorOpenAI:
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required when GENERATOR=openai")
		}
	case GeneratorGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when GENERATOR=gemini")
		}
	case GeneratorNone:
	default:
		return fmt.Errorf("GENERATOR must be openai, gemini or none, got %q", c.Generator)
	}

	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must not be negative")
	}
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
