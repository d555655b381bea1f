package generation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"skillbridge/internal/assessment"
	"skillbridge/internal/cache"
	"skillbridge/internal/metrics"
	"skillbridge/pkg/logging"
)

const cacheNamespace = "recommendations"

type Config struct {
	// CacheTTL bounds how long a set is reused; 0 keeps it until evicted.
	CacheTTL time.Duration
	// GenerateTimeout bounds one primary generation. Default 60s.
	GenerateTimeout time.Duration
}

// Service implements GetOrGenerate over a generation cache.
type Service struct {
	cache   *cache.Typed[RecommendationSet]
	primary Generator
	flight  singleflight.Group
	timeout time.Duration
	now     func() time.Time
}

func NewService(store cache.Store, primary Generator, cfg Config) *Service {
	if primary == nil {
		primary = Disabled()
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}
	return &Service{
		cache:   cache.NewTyped[RecommendationSet](store, cfg.CacheTTL),
		primary: primary,
		timeout: cfg.GenerateTimeout,
		now:     time.Now,
	}
}

// Key builds the composite cache key from the normalized input: assessment
// id, role, step count and the assessment the set was built from. Inputs
// that normalize alike share an entry; a set built before the assessment
// was analyzed is never served once the real result exists.
func Key(in Input) cache.Key {
	in = normalize(in)
	return cache.NewKey(cacheNamespace,
		in.AssessmentID,
		strings.ToLower(in.Role),
		strconv.Itoa(in.Steps),
		basis(in.Assessment),
	)
}

func basis(a *assessment.Assessment) string {
	if a == nil || !a.IsRealAssessment {
		return "none"
	}
	return a.GeneratedAt.UTC().Format(time.RFC3339Nano)
}

// Get returns a cached set for key without generating.
func (s *Service) Get(ctx context.Context, key cache.Key) (RecommendationSet, bool, error) {
	return s.cache.Get(ctx, key)
}

func (s *Service) Has(ctx context.Context, key cache.Key) (bool, error) {
	return s.cache.Has(ctx, key)
}

func (s *Service) Set(ctx context.Context, key cache.Key, set RecommendationSet) error {
	return s.cache.Set(ctx, key, set)
}

// GetOrGenerate returns the cached set for in, or generates one. Concurrent
// callers for the same key share a single generation. Primary failures are
// logged and answered by Fallback; only malformed input is an error.
func (s *Service) GetOrGenerate(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.AssessmentID) == "" {
		return Result{}, fmt.Errorf("%w: assessment id is required", ErrInvalidInput)
	}
	if in.Steps < 0 || in.Steps > MaxSteps {
		return Result{}, fmt.Errorf("%w: steps must be between 0 and %d, 0 selects %d", ErrInvalidInput, MaxSteps, DefaultSteps)
	}

	key := Key(in)
	logger := logging.L(ctx).With(zap.String("generation_key", key.String()))

	if set, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn("generation_cache_get_error", zap.Error(err))
	} else if ok {
		return s.done(logger, set, OutcomeCached), nil
	}

	v, _, _ := s.flight.Do(key.String(), func() (any, error) {
		// a caller that lost the race may find the result already stored
		if set, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return Result{Set: set, Outcome: OutcomeCached}, nil
		}

		res := s.generate(ctx, logger, in)
		if err := s.cache.Set(ctx, key, res.Set); err != nil {
			logger.Warn("generation_cache_set_error", zap.Error(err))
		}
		return res, nil
	})

	res := v.(Result)
	return s.done(logger, res.Set, res.Outcome), nil
}

func (s *Service) generate(ctx context.Context, logger *zap.Logger, in Input) Result {
	norm := normalize(in)

	// one caller disconnecting must not fail a generation others share
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	set, err := s.primary.Generate(genCtx, norm)
	metrics.GenerationLatencySeconds.Observe(time.Since(start).Seconds())

	if err == nil {
		err = s.finish(set, norm)
	}
	if err != nil {
		logger.Warn("primary generation failed, using fallback",
			zap.Error(fmt.Errorf("%w: %w", ErrGenerationFailed, err)),
		)
		return Result{Set: Fallback(norm, s.now()), Outcome: OutcomeFallback}
	}
	return Result{Set: *set, Outcome: OutcomePrimary}
}

// finish stamps identity fields onto a primary set and validates it.
func (s *Service) finish(set *RecommendationSet, in Input) error {
	if set == nil {
		return fmt.Errorf("generator returned no result")
	}
	set.AssessmentID = in.AssessmentID
	set.Role = in.Role
	set.UsedFallback = false
	set.GeneratedAt = s.now().UTC()
	if set.MatchScore == 0 && in.Assessment != nil {
		set.MatchScore = in.Assessment.OverallScore
	}
	if len(set.Steps) > in.Steps {
		set.Steps = set.Steps[:in.Steps]
	}
	for i := range set.Steps {
		if set.Steps[i].Skills == nil {
			set.Steps[i].Skills = []string{}
		}
	}
	return Validate(*set)
}

func (s *Service) done(logger *zap.Logger, set RecommendationSet, outcome Outcome) Result {
	metrics.GenerationOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	logger.Info("recommendations ready",
		zap.String("outcome", string(outcome)),
		zap.Bool("used_fallback", set.UsedFallback),
		zap.Int("steps", len(set.Steps)),
	)
	return Result{Set: set, Outcome: outcome}
}
