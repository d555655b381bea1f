// Package resolver serves assessment results through a fixed chain of
// tiers: memory cache, exact store lookup, fuzzy store lookup and finally a
// synthesized placeholder. Resolve therefore always returns a result.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"skillbridge/internal/assessment"
	"skillbridge/internal/cache"
	"skillbridge/internal/metrics"
	"skillbridge/internal/store"
	"skillbridge/pkg/logging"
)

// Origin records which tier produced a result.
type Origin string

const (
	OriginMemory      Origin = "memory"
	OriginStore       Origin = "store"
	OriginFuzzy       Origin = "fuzzy"
	OriginSynthesized Origin = "synthesized"
)

const cacheNamespace = "result"

// LookupResult is the outcome of Resolve. Found is always true for Resolve;
// it exists so lower tiers can report a miss in the same shape.
type LookupResult struct {
	Found    bool
	Artifact assessment.Assessment
	Origin   Origin
}

// RecordFinder is the subset of store.Store the resolver reads from.
type RecordFinder interface {
	GetExact(ctx context.Context, id string) (assessment.Record, error)
	GetFuzzy(ctx context.Context, pattern string, limit int) ([]assessment.Record, error)
}

type Resolver struct {
	records RecordFinder
	cache   *cache.Typed[assessment.Assessment]
	now     func() time.Time
}

// New builds a Resolver over records, memoizing into results.
// ttl bounds how long a memoized result (including a placeholder) is served.
func New(records RecordFinder, results cache.Store, ttl time.Duration) *Resolver {
	return &Resolver{
		records: records,
		cache:   cache.NewTyped[assessment.Assessment](results, ttl),
		now:     time.Now,
	}
}

// Resolve returns the assessment for id from the first tier that has one.
// Every tier other than memory writes its result back to the cache. A
// blank id goes straight to a placeholder.
func (r *Resolver) Resolve(ctx context.Context, id string) LookupResult {
	logger := logging.L(ctx).With(zap.String("assessment_id", id))
	key := cacheKey(id)

	if a, ok, err := r.cache.Get(ctx, key); err != nil {
		logger.Warn("result_cache_get_error", zap.Error(err))
	} else if ok {
		return r.found(ctx, a, OriginMemory)
	}

	// a blank id would match every record in the fuzzy tier
	if strings.TrimSpace(id) != "" {
		if a, ok := r.exact(ctx, logger, id); ok {
			r.remember(ctx, logger, key, a)
			return r.found(ctx, a, OriginStore)
		}

		if a, ok := r.fuzzy(ctx, logger, id); ok {
			r.remember(ctx, logger, key, a)
			return r.found(ctx, a, OriginFuzzy)
		}
	}

	logger.Info("assessment result synthesized")
	a := assessment.Placeholder(id, r.now())
	r.remember(ctx, logger, key, a)
	return r.found(ctx, a, OriginSynthesized)
}

// Invalidate drops the memoized result for id, so the next Resolve reads
// the store again.
func (r *Resolver) Invalidate(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, cacheKey(id))
}

// Prime stores a known-good result for id, replacing any placeholder.
func (r *Resolver) Prime(ctx context.Context, a assessment.Assessment) error {
	return r.cache.Set(ctx, cacheKey(a.AssessmentID), a)
}

func (r *Resolver) exact(ctx context.Context, logger *zap.Logger, id string) (assessment.Assessment, bool) {
	rec, err := r.records.GetExact(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return assessment.Assessment{}, false
	case err != nil:
		metrics.StoreErrorsTotal.WithLabelValues("exact").Inc()
		logger.Warn("store_unavailable", zap.String("query", "exact"), zap.Error(err))
		return assessment.Assessment{}, false
	case rec.Artifact == nil:
		return assessment.Assessment{}, false
	}
	return *rec.Artifact, true
}

func (r *Resolver) fuzzy(ctx context.Context, logger *zap.Logger, id string) (assessment.Assessment, bool) {
	recs, err := r.records.GetFuzzy(ctx, id, 1)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("fuzzy").Inc()
		logger.Warn("store_unavailable", zap.String("query", "fuzzy"), zap.Error(err))
		return assessment.Assessment{}, false
	}
	if len(recs) == 0 || recs[0].Artifact == nil {
		return assessment.Assessment{}, false
	}

	logger.Info("assessment matched by fuzzy id", zap.String("matched_id", recs[0].ID))
	return *recs[0].Artifact, true
}

// remember is best-effort: a failed write only costs a future store query.
func (r *Resolver) remember(ctx context.Context, logger *zap.Logger, key cache.Key, a assessment.Assessment) {
	if err := r.cache.Set(ctx, key, a); err != nil {
		logger.Warn("result_cache_set_error", zap.Error(err))
	}
}

func (r *Resolver) found(ctx context.Context, a assessment.Assessment, origin Origin) LookupResult {
	metrics.ResolveOriginsTotal.WithLabelValues(string(origin)).Inc()
	logging.L(ctx).Debug("assessment resolved",
		zap.String("assessment_id", a.AssessmentID),
		zap.String("origin", string(origin)),
	)
	return LookupResult{Found: true, Artifact: a, Origin: origin}
}

func cacheKey(id string) cache.Key {
	return cache.NewKey(cacheNamespace, id)
}
