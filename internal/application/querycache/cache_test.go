package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) CacheLookup(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[result]++
}

func TestGet_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	c := New(time.Minute, obs)
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := Get(ctx, c, "members", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, _ = Get(ctx, c, "members", load)
	assert.Equal(t, 1, v, "second read is served from cache")

	c.Invalidate("members")
	v, _ = Get(ctx, c, "members", load)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, obs.counts[LookupHit])
	assert.Equal(t, 2, obs.counts[LookupMiss])
}

func TestInvalidate_Hierarchical(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, nil)
	for _, k := range []string{"memberPayments/1", "memberPayments/2", "memberPaymentsX", "payments"} {
		_, err := Get(ctx, c, k, func(context.Context) (string, error) { return k, nil })
		require.NoError(t, err)
	}

	c.Invalidate("memberPayments")
	assert.Equal(t, 2, c.Len())
	_, ok := c.entries.Get("memberPaymentsX")
	assert.True(t, ok, "sibling with a shared string prefix survives")

	c.Invalidate(Key("payments"))
	assert.Equal(t, 1, c.Len())
}

func TestGet_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, nil)
	boom := errors.New("boom")

	_, err := Get(ctx, c, "reports", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	v, err := Get(ctx, c, "reports", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestGet_CoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Get(ctx, c, "members", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestGet_StaleLoadDoesNotRepopulate(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	go func() {
		v, _ := Get(ctx, c, "payments", func(context.Context) (string, error) {
			close(started)
			<-release
			return "before", nil
		})
		_ = v
		done <- 1
	}()
	<-started
	c.Invalidate("payments")
	close(release)
	<-done

	assert.Equal(t, 0, c.Len(), "load that began before invalidation must not be stored")
	v, err := Get(ctx, c, "payments", func(context.Context) (string, error) { return "after", nil })
	require.NoError(t, err)
	assert.Equal(t, "after", v)
}

func TestInvalidate_WaitsForStoreInProgress(t *testing.T) {
	c := New(time.Minute, nil)
	gen := c.generation.Load()

	// A load has passed its generation check and is about to add.
	c.mu.Lock()
	invalidated := make(chan struct{})
	go func() {
		c.Invalidate("payments")
		close(invalidated)
	}()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, gen, c.generation.Load(), "invalidate must not run during a store")
	c.entries.Add("payments", "before")
	c.mu.Unlock()
	<-invalidated

	_, ok := c.entries.Get("payments")
	assert.False(t, ok, "value stored before the invalidation is dropped by it")
}

func TestGet_ConcurrentInvalidateLeavesNoStaleValue(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, nil)
	var version atomic.Int64
	load := func(context.Context) (int64, error) { return version.Load(), nil }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				Get(ctx, c, "members", load)
			}
		}()
	}
	for i := 0; i < 200; i++ {
		version.Add(1)
		c.Invalidate("members")
	}
	wg.Wait()

	v, err := Get(ctx, c, "members", load)
	require.NoError(t, err)
	assert.Equal(t, version.Load(), v)
}

func TestGet_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(20*time.Millisecond, nil)
	n := 0
	load := func(context.Context) (int, error) { n++; return n, nil }

	Get(ctx, c, "plans", load)
	time.Sleep(60 * time.Millisecond)
	v, _ := Get(ctx, c, "plans", load)
	assert.Equal(t, 2, v)
}
