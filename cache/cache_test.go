package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](4)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after overwrite = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[int, string](0)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", c.Capacity(), DefaultCapacity)
	}

	calls := 0
	create := func() string {
		calls++
		return "value"
	}
	for range 3 {
		if got := c.GetOrCreate(7, create); got != "value" {
			t.Fatalf("GetOrCreate() = %q, want value", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits and 1 miss", st)
	}
}

func TestCacheEviction(t *testing.T) {
	const capacity = 2
	c := New[int, int](capacity)
	const n = ShardCount * capacity * 4
	for i := range n {
		c.Set(i, i)
	}
	if got := c.Len(); got > ShardCount*capacity {
		t.Errorf("Len() = %d, want at most %d", got, ShardCount*capacity)
	}
	st := c.Stats()
	if int(st.Evictions) != n-st.Len {
		t.Errorf("Evictions = %d, want %d", st.Evictions, n-st.Len)
	}
}

func TestCacheLRUOrder(t *testing.T) {
	c := New[int, int](2)

	// Find three keys sharing one shard.
	var keys []int
	target := c.shard(0)
	for k := 0; len(keys) < 3; k++ {
		if c.shard(k) == target {
			keys = append(keys, k)
		}
	}
	a, b, d := keys[0], keys[1], keys[2]
	c.Set(a, 1)
	c.Set(b, 2)
	c.Get(a)
	c.Set(d, 3)

	if _, ok := c.Get(b); ok {
		t.Error("least recently used key survived eviction")
	}
	if _, ok := c.Get(a); !ok {
		t.Error("recently used key was evicted")
	}
	if _, ok := c.Get(d); !ok {
		t.Error("new key missing")
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New[string, int](8)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) after Clear reported a hit")
	}
}

func TestStatsHitRate(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"no lookups", Stats{}, 0},
		{"all hits", Stats{Hits: 4}, 1},
		{"mixed", Stats{Hits: 1, Misses: 3}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", i%32)
				v := c.GetOrCreate(key, func() int { return i % 32 })
				if want := i % 32; v != want {
					t.Errorf("goroutine %d: GetOrCreate(%s) = %d, want %d", g, key, v, want)
					return
				}
			}
		}()
	}
	wg.Wait()

	st := c.Stats()
	if st.Misses != 32 {
		t.Errorf("Misses = %d, want 32", st.Misses)
	}
	if st.Hits+st.Misses != 8*200 {
		t.Errorf("lookups = %d, want %d", st.Hits+st.Misses, 8*200)
	}
}
