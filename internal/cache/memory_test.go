package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(expired) error = %v, want ErrMiss", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after expiry = %d, want 0", c.Len())
	}
}

func TestMemory_BoundedEviction(t *testing.T) {
	c := NewMemory(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.Set(ctx, fmt.Sprintf("k%d", i), "v", 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	// Oldest two evicted, newest three retained.
	for _, key := range []string{"k0", "k1"} {
		if _, err := c.Get(ctx, key); !errors.Is(err, ErrMiss) {
			t.Errorf("Get(%s) error = %v, want ErrMiss", key, err)
		}
	}
	for _, key := range []string{"k2", "k3", "k4"} {
		if _, err := c.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) error = %v, want nil", key, err)
		}
	}
}

func TestMemory_LRUOrder(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", "1", 0)
	c.Set(ctx, "b", "2", 0)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) error = %v", err)
	}
	c.Set(ctx, "c", "3", 0)

	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(b) error = %v, want ErrMiss", err)
	}
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Errorf("Get(a) error = %v, want nil", err)
	}
}

func TestMemory_DeleteAndClear(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "a", "1", 0)
	c.Set(ctx, "b", "2", 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(deleted) error = %v, want ErrMiss", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}
