package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("accounts", 1)
	c.Set("targets", 2)

	if _, ok := c.Get("accounts"); !ok {
		t.Fatal("accounts should be cached")
	}
	c.Set("planName", 3)

	if _, ok := c.Get("targets"); ok {
		t.Error("targets should have been evicted")
	}
	if v, ok := c.Get("accounts"); !ok || v != 1 {
		t.Errorf("accounts = %v, %v; want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("categories", 7)
	c.Set("transactions", 8)

	now = now.Add(30 * time.Second)
	if v, ok := c.Get("categories"); !ok || v != 7 {
		t.Fatalf("categories = %v, %v; want 7, true", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("categories"); ok {
		t.Error("categories should have expired")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 until transactions is swept", c.Len())
	}
}

func TestLRUFullCacheDropsExpiredBeforeRecent(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int](2, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("accounts", 1)
	now = now.Add(45 * time.Second)
	c.Set("targets", 2)
	c.Get("accounts")

	now = now.Add(30 * time.Second)
	c.Set("planName", 3)

	if _, ok := c.Get("accounts"); ok {
		t.Error("expired accounts should have been swept")
	}
	if v, ok := c.Get("targets"); !ok || v != 2 {
		t.Errorf("targets = %v, %v; want 2, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c := NewLRU[string](0, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	c.Delete("b")
	if _, ok := c.Get("b"); ok {
		t.Error("b should be deleted")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
	c.Set("a", "again")
	if v, _ := c.Get("a"); v != "again" {
		t.Errorf("a = %q after purge and set", v)
	}
}
