package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_TTL(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{})
	defer c.Close()

	ctx := context.Background()
	key := "test:key"

	if err := c.Set(ctx, key, []byte("hello"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}

	time.Sleep(30 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemoryStore_NoTTLNeverExpires(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{})
	defer c.Close()

	base := time.Now()
	c.now = func() time.Time { return base }

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c.now = func() time.Time { return base.Add(24 * 365 * time.Hour) }

	ok, err := c.Has(ctx, "k")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !ok {
		t.Fatalf("entry without ttl should not expire")
	}
}

func TestMemoryStore_StoreWideTTL(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{TTL: 20 * time.Millisecond})
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := c.Has(ctx, "k"); !ok {
		t.Fatalf("expected hit before the store TTL")
	}

	time.Sleep(40 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("expected miss after the store TTL")
	}
}

func TestMemoryStore_HasDoesNotRefreshRecency(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{MaxEntries: 2})
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if ok, _ := c.Has(ctx, "a"); !ok {
		t.Fatalf("expected a to be present")
	}
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if ok, _ := c.Has(ctx, "a"); ok {
		t.Fatalf("Has must not protect a from eviction")
	}
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{})
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("one"), 0)
	_ = c.Set(ctx, "k", []byte("two"), 0)

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "two" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one entry per key, got %d", c.Len())
	}
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{})
	defer c.Close()
	ctx := context.Background()

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("store must not alias caller buffer, got %q", got)
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{MaxEntries: 2})
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	// touch a so b becomes least recently used
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Fatalf("expected a to be present")
	}
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if ok, _ := c.Has(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if ok, _ := c.Has(ctx, k); !ok {
			t.Fatalf("expected %s to survive eviction", k)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestMemoryStore_DeleteAndClear(t *testing.T) {
	c := NewMemoryStore(MemoryConfig{})
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	_ = c.Delete(ctx, "a")
	if ok, _ := c.Has(ctx, "a"); ok {
		t.Fatalf("expected a to be deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty store after Clear, got %d", c.Len())
	}
}
