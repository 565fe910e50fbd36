package engine_test

import (
	"testing"
	"time"

	"github.com/warp/costing-engine/engine"
)

func TestReportCache_GetSet(t *testing.T) {
	c := engine.NewReportCache[string](2, time.Minute)

	key := engine.CacheKey("monthwise:org", 7)
	if key != "monthwise:org:7" {
		t.Fatalf("unexpected key: %s", key)
	}

	if _, ok := c.Get(key); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set(key, "report")
	got, ok := c.Get(key)
	if !ok || got != "report" {
		t.Errorf("expected hit with 'report', got %q (hit=%v)", got, ok)
	}
}

func TestReportCache_VersionChangesKey(t *testing.T) {
	// A store mutation bumps the version, so the old entry is never served.
	c := engine.NewReportCache[string](4, time.Minute)
	c.Set(engine.CacheKey("monthwise:org", 1), "stale")

	if _, ok := c.Get(engine.CacheKey("monthwise:org", 2)); ok {
		t.Error("new version must miss the old entry")
	}
}

func TestReportCache_LRUEviction(t *testing.T) {
	c := engine.NewReportCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry b should survive")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestReportCache_TTLExpiry(t *testing.T) {
	c := engine.NewReportCache[int](2, time.Millisecond)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry must not be served")
	}
}
