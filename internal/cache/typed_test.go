package cache

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Score int      `json:"score"`
}

func TestTypedRoundTrip(t *testing.T) {
	mem := NewMemoryStore(MemoryConfig{})
	t.Cleanup(func() { mem.Close() })

	c := NewTyped[sample](mem, 0)
	ctx := context.Background()
	key := NewKey("gen", "a-1", "sre", "3")

	if ok, _ := c.Has(ctx, key); ok {
		t.Fatalf("expected miss before Set")
	}

	want := sample{Name: "x", Tags: []string{"go", "k8s"}, Score: 80}
	if err := c.Set(ctx, key, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if ok, _ := c.Has(ctx, key); !ok {
		t.Fatalf("expected Has after Set")
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedDecodeError(t *testing.T) {
	mem := NewMemoryStore(MemoryConfig{})
	t.Cleanup(func() { mem.Close() })
	ctx := context.Background()

	key := NewKey("gen", "bad")
	_ = mem.Set(ctx, key.String(), []byte("{not json"), 0)

	c := NewTyped[sample](mem, 0)
	_, ok, err := c.Get(ctx, key)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if ok {
		t.Fatalf("undecodable entry must not be reported as a hit")
	}
}
