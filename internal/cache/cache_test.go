package cache

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/log"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.Now)

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected entry to expire after ttl")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size = %d", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to be present", k)
		}
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 || c.Size() != 2 {
		t.Errorf("overwrite failed: v=%d size=%d", v, c.Size())
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}
}

func TestManagerCleanAll(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	short := NewLRUCache[int](10, time.Second).WithClock(clock.Now)
	long := NewLRUCache[int](10, time.Hour).WithClock(clock.Now)
	short.Set("a", 1)
	short.Set("b", 2)
	long.Set("c", 3)

	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	m := NewManager(log.New(cfg))
	m.Register(short)
	m.Register(long)

	clock.Advance(2 * time.Second)
	if n := m.CleanAll(); n != 2 {
		t.Errorf("CleanAll() = %d, want 2", n)
	}
	if long.Size() != 1 {
		t.Errorf("unexpired entry removed")
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
}

func TestLoaderCachesAndSharesLoads(t *testing.T) {
	l := NewLoader(NewLRUCache[int](10, time.Hour))
	var calls atomic.Int32
	release := make(chan struct{})

	load := func() (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("k", load)
			if err != nil {
				t.Errorf("Get() error = %v", err)
			}
			results[i] = v
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		if v != 42 {
			t.Errorf("results[%d] = %d, want 42", i, v)
		}
	}
	if n := calls.Load(); n < 1 || n > 5 {
		t.Errorf("unexpected load count %d", n)
	}

	before := calls.Load()
	if v, _ := l.Get("k", load); v != 42 || calls.Load() != before {
		t.Error("expected cached value without another load")
	}
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	l := NewLoader(NewLRUCache[int](10, time.Hour))
	boom := errors.New("boom")

	if _, err := l.Get("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	v, err := l.Get("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Get() = %d, %v; want 7, nil", v, err)
	}
}

func TestLoaderInvalidateDiscardsInFlightLoad(t *testing.T) {
	l := NewLoader(NewLRUCache[int](10, time.Hour))
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := l.Get("k", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	l.Invalidate("k")
	close(release)
	if v := <-done; v != 1 {
		t.Fatalf("in-flight caller got %d, want 1", v)
	}

	if _, ok := l.Cache().Get("k"); ok {
		t.Fatal("stale load must not populate the cache after Invalidate")
	}
	v, err := l.Get("k", func() (int, error) { return 2, nil })
	if err != nil || v != 2 {
		t.Fatalf("Get() after invalidate = %d, %v; want 2", v, err)
	}
}
