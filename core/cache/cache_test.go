package cache

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

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string](time.Minute)
	var calls int32
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	v, err := c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_Expiry(t *testing.T) {
	c := New[int](time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	n := 0
	load := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}

	v, _ := c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, _ = c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 2, v)
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	c := New[int](0)
	n := 0
	load := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}
	c.GetOrLoad(context.Background(), "k", load)
	c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 2, n)
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c := New[int](time.Minute)
	_, err := c.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	assert.Error(t, err)

	v, err := c.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int](time.Minute)
	n := 0
	load := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}
	c.GetOrLoad(context.Background(), "a", load)
	c.GetOrLoad(context.Background(), "b", load)

	c.Invalidate("a")
	v, _ := c.GetOrLoad(context.Background(), "a", load)
	assert.Equal(t, 3, v)

	c.Clear()
	v, _ = c.GetOrLoad(context.Background(), "b", load)
	assert.Equal(t, 4, v)
}

func TestCache_ConcurrentMissesShareLoad(t *testing.T) {
	c := New[int](time.Minute)
	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
