package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Typed stores JSON-encoded values of V in a Store under structured keys.
type Typed[V any] struct {
	store Store
	ttl   time.Duration
}

func NewTyped[V any](store Store, ttl time.Duration) *Typed[V] {
	return &Typed[V]{store: store, ttl: ttl}
}

// Get decodes the entry for key. A value that fails to decode is reported
// as an error and a miss.
func (t *Typed[V]) Get(ctx context.Context, key Key) (V, bool, error) {
	var zero V
	raw, ok, err := t.store.Get(ctx, key.String())
	if err != nil || !ok {
		return zero, false, err
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return v, true, nil
}

func (t *Typed[V]) Set(ctx context.Context, key Key, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return t.store.Set(ctx, key.String(), raw, t.ttl)
}

func (t *Typed[V]) Has(ctx context.Context, key Key) (bool, error) {
	return t.store.Has(ctx, key.String())
}

func (t *Typed[V]) Delete(ctx context.Context, key Key) error {
	return t.store.Delete(ctx, key.String())
}
