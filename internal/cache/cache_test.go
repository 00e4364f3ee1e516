// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache[V any](capacity int, ttl time.Duration) (*Cache[V], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[V]("test", capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache[string](10, time.Minute)
	c.Set("key1", "value1")

	if v, ok := c.Get("key1"); !ok || v != "value1" {
		t.Errorf("Get(key1) = %q, %v", v, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("Expected key2 to not exist")
	}
	if !c.Delete("key1") || c.Delete("key1") {
		t.Error("Delete did not report presence correctly")
	}

	s := c.GetStats()
	if s.Hits != 1 || s.Misses != 1 || s.Size != 0 {
		t.Errorf("stats = %+v", s)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate = %v, want 50", c.HitRate())
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache[int](10, time.Minute)
	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)

	clock.Advance(2 * time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("Expected short to be expired")
	}
	if v, ok := c.Get("long"); !ok || v != 2 {
		t.Errorf("Get(long) = %v, %v", v, ok)
	}
	if c.GetStats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.GetStats().Evictions)
	}
}

func TestCacheLRUEviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache[int](3, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // a becomes most recently used
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Expected %s to remain", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestCacheUpdateRefreshesTTL(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache[string](10, time.Minute)
	c.Set("k", "old")
	clock.Advance(50 * time.Second)
	c.Set("k", "new")
	clock.Advance(50 * time.Second)

	if v, ok := c.Get("k"); !ok || v != "new" {
		t.Errorf("Get(k) = %q, %v", v, ok)
	}
}

func TestCacheCleanupAndClear(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache[int](100, time.Minute)
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("old%d", i), i)
	}
	clock.Advance(2 * time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("new%d", i), i)
	}

	if n := c.Cleanup(); n != 10 {
		t.Errorf("Cleanup removed %d, want 10", n)
	}
	if c.Len() != 5 {
		t.Errorf("Len = %d, want 5", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	if c.GetStats().Evictions != 15 {
		t.Errorf("evictions = %d, want 15", c.GetStats().Evictions)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int]("concurrent", 50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%80)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Cleanup()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	k1 := GenerateKey("top", map[string]int{"limit": 50})
	k2 := GenerateKey("top", map[string]int{"limit": 50})
	k3 := GenerateKey("top", map[string]int{"limit": 10})
	if k1 != k2 || k1 == k3 || !strings.HasPrefix(k1, "top:") {
		t.Errorf("GenerateKey: %q %q %q", k1, k2, k3)
	}

	s := SecretKey("profile", "secret-token")
	if strings.Contains(s, "secret-token") || !strings.HasPrefix(s, "profile:") {
		t.Errorf("SecretKey leaked the secret: %q", s)
	}
	if s == SecretKey("profile", "other-token") {
		t.Error("different secrets share a key")
	}
}
