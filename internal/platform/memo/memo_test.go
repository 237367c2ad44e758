package memo

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheStoresAndReturnsValues(t *testing.T) {
	for _, capacity := range []int{0, 16} {
		c := New(Options[string, int]{Capacity: capacity, Hash: StringHash})

		if _, ok := c.Get("a"); ok {
			t.Fatalf("capacity=%d: unexpected hit on empty cache", capacity)
		}
		c.Add("a", 1)
		c.Add("a", 2)

		got, ok := c.Get("a")
		if !ok || got != 2 {
			t.Fatalf("capacity=%d: Get(a) = %d,%v want 2,true", capacity, got, ok)
		}
		if c.Len() != 1 {
			t.Fatalf("capacity=%d: Len=%d want 1", capacity, c.Len())
		}
	}
}

func TestCacheCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(Options[string, int]{Capacity: 2})
	c.Add("a", 1)
	c.Add("b", 2)
	_, _ = c.Get("a")
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should still be cached")
	}
}

func TestCacheTTLAppliesPerValue(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := New(Options[string, int]{
		Hash: StringHash,
		Now:  func() time.Time { return now },
		TTL: func(v int) time.Duration {
			if v < 0 {
				return time.Minute
			}
			return 0
		},
	})

	c.Add("absent", -1)
	c.Add("present", 7)

	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatalf("expired entry returned")
	}
	if v, ok := c.Get("present"); !ok || v != 7 {
		t.Fatalf("permanent entry lost: %d,%v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len=%d want 1 after expiry", c.Len())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(Options[string, int]{Hash: StringHash})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("k%d", i%50)
				c.Add(k, i)
				_, _ = c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() != 50 {
		t.Fatalf("Len=%d want 50", c.Len())
	}
}
