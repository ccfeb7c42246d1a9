package cache

import (
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string](4)
	mod := time.Unix(1700000000, 0)

	if _, ok := c.Get("a", 10, mod); ok {
		t.Fatal("Get() hit on empty cache")
	}
	c.Set("a", "icon-a", 10, mod)
	got, ok := c.Get("a", 10, mod)
	if !ok || got != "icon-a" {
		t.Errorf("Get() = %q, %v; want icon-a, true", got, ok)
	}
}

func TestCache_StaleMetadataMisses(t *testing.T) {
	c := New[int](4)
	mod := time.Unix(1700000000, 0)
	c.Set("k", 1, 10, mod)

	if _, ok := c.Get("k", 11, mod); ok {
		t.Error("Get() hit with a different size")
	}
	if _, ok := c.Get("k", 10, mod.Add(time.Second)); ok {
		t.Error("Get() hit with a different mtime")
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	mod := time.Unix(1, 0)
	c.Set("a", 1, 0, mod)
	c.Set("b", 2, 0, mod)
	c.Get("a", 0, mod) // a is now newer than b
	c.Set("c", 3, 0, mod)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("b", 0, mod); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a", 0, mod); !ok {
		t.Error("a should have survived")
	}
	if _, ok := c.Get("c", 0, mod); !ok {
		t.Error("c should be present")
	}
}

func TestCache_PurgeAndRatio(t *testing.T) {
	c := New[int](0) // clamped to 1
	if c.HitRatio() != 0 {
		t.Error("HitRatio() before lookups should be 0")
	}
	mod := time.Unix(1, 0)
	c.Set("a", 1, 0, mod)
	c.Get("a", 0, mod)
	c.Get("zz", 0, mod)
	if r := c.HitRatio(); r != 0.5 {
		t.Errorf("HitRatio() = %v, want 0.5", r)
	}
	c.Set("b", 2, 0, mod)
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
}
