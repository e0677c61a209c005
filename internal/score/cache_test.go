package score

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10, time.Hour)
	key := Key{JobHash: "j1", ResumeID: "r1"}
	c.Set(key, &Result{Score: 0.8})

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Score != 0.8 {
		t.Errorf("score = %.2f, want 0.80", got.Score)
	}

	if _, ok := c.Get(Key{JobHash: "j1", ResumeID: "r2"}); ok {
		t.Error("different resume should miss")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", s)
	}
	if s.HitRate() != 0.5 {
		t.Errorf("hit rate = %.2f, want 0.50", s.HitRate())
	}
}

func TestCacheExpiry(t *testing.T) {
	clk := newFakeClock()
	c := NewCache(10, time.Hour, WithClock(clk.Now))
	key := Key{JobHash: "j1"}
	c.Set(key, &Result{Score: 0.5})

	clk.Advance(59 * time.Minute)
	if _, ok := c.Get(key); !ok {
		t.Fatal("entry should still be fresh")
	}

	clk.Advance(2 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	clk := newFakeClock()
	c := NewCache(3, time.Hour, WithClock(clk.Now))

	a, b, d := Key{JobHash: "a"}, Key{JobHash: "b"}, Key{JobHash: "d"}
	c.Set(a, &Result{})
	clk.Advance(time.Second)
	c.Set(b, &Result{})
	clk.Advance(time.Second)
	c.Set(Key{JobHash: "c"}, &Result{})
	clk.Advance(time.Second)

	// Touch a so that b becomes the least recently accessed.
	if _, ok := c.Get(a); !ok {
		t.Fatal("a should be cached")
	}
	clk.Advance(time.Second)
	c.Set(d, &Result{})

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if _, ok := c.Get(b); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []Key{a, {JobHash: "c"}, d} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k.JobHash)
		}
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Set(Key{JobHash: "a"}, &Result{Score: 0.1})
	c.Set(Key{JobHash: "b"}, &Result{Score: 0.2})
	c.Set(Key{JobHash: "a"}, &Result{Score: 0.3})

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	got, _ := c.Get(Key{JobHash: "a"})
	if got == nil || got.Score != 0.3 {
		t.Errorf("overwrite lost, got %+v", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Set(Key{JobHash: "j1", ResumeID: "r1"}, &Result{})
	c.Set(Key{JobHash: "j2", ResumeID: "r1"}, &Result{})
	c.Set(Key{JobHash: "j1", ResumeID: "r2"}, &Result{})

	if n := c.InvalidateByResume("r1"); n != 2 {
		t.Errorf("InvalidateByResume removed %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}

	c.Set(Key{JobHash: "j3", ResumeID: "r2"}, &Result{})
	if n := c.InvalidateByJob("j1"); n != 1 {
		t.Errorf("InvalidateByJob removed %d, want 1", n)
	}
	if _, ok := c.Get(Key{JobHash: "j3", ResumeID: "r2"}); !ok {
		t.Error("unrelated entry should survive")
	}
}

func TestCacheClearResetsCounters(t *testing.T) {
	c := NewCache(10, time.Hour)
	key := Key{JobHash: "j1"}
	c.Set(key, &Result{})
	c.Get(key)
	c.Get(Key{JobHash: "missing"})

	c.Clear()
	s := c.Stats()
	if s.Size != 0 || s.Hits != 0 || s.Misses != 0 {
		t.Errorf("stats after clear = %+v", s)
	}
	if s.Capacity != 10 {
		t.Errorf("capacity = %d, want 10", s.Capacity)
	}
}

func TestCacheDefaults(t *testing.T) {
	c := NewCache(0, 0)
	if c.Stats().Capacity != DefaultCacheCapacity {
		t.Errorf("capacity = %d, want %d", c.Stats().Capacity, DefaultCacheCapacity)
	}
	if c.freshness != DefaultCacheFreshness {
		t.Errorf("freshness = %v, want %v", c.freshness, DefaultCacheFreshness)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(50, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := Key{JobHash: string(rune('a' + (i+j)%26))}
				c.Set(k, &Result{Score: float64(j)})
				c.Get(k)
				if j%50 == 0 {
					c.InvalidateByJob(k.JobHash)
				}
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("len %d exceeds capacity", c.Len())
	}
}
