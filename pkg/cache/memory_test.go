package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/pkg/cache"
)

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "v1", 0))
	require.NoError(t, c.Set(ctx, "k", "v2", 0))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
	require.Equal(t, 1, c.Len())
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ttl       time.Duration
		defTTL    time.Duration
		wantFound bool
	}{
		{name: "positive ttl expires", ttl: 10 * time.Millisecond, defTTL: time.Hour, wantFound: false},
		{name: "zero uses default", ttl: 0, defTTL: 10 * time.Millisecond, wantFound: false},
		{name: "zero with long default", ttl: 0, defTTL: time.Hour, wantFound: true},
		{name: "negative never expires", ttl: -1, defTTL: 10 * time.Millisecond, wantFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			c := cache.NewMemory[int](cache.WithDefaultTTL(tt.defTTL), cache.WithCleanupInterval(0))
			t.Cleanup(func() { _ = c.Close() })

			require.NoError(t, c.Set(ctx, "k", 1, tt.ttl))
			time.Sleep(30 * time.Millisecond)

			_, err := c.Get(ctx, "k")
			if tt.wantFound {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, cache.ErrNotFound)
			}
		})
	}
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "never-set"))

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_MaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", 3, 0))

	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)
	for _, k := range []string{"a", "c"} {
		_, err := c.Get(ctx, k)
		require.NoError(t, err, k)
	}
}

func TestMemory_JanitorPurgesExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithCleanupInterval(5 * time.Millisecond))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "short", 1, time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int]()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.ErrorIs(t, c.Set(ctx, "k", 1, 0), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrClosed)
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithMaxEntries(50))
	t.Cleanup(func() { _ = c.Close() })

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i*100+j)%80)
				_ = c.Set(ctx, key, j, 0)
				_, _ = c.Get(ctx, key)
				if j%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 50)
}

func TestJSONMarshaler(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}
	m := cache.JSONMarshaler[payload]{}

	data, err := m.Marshal(payload{Name: "Ann"})
	require.NoError(t, err)

	v, err := m.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "Ann", v.Name)

	_, err = m.Unmarshal([]byte("{"))
	require.ErrorIs(t, err, cache.ErrUnmarshal)

	_, err = cache.JSONMarshaler[chan int]{}.Marshal(make(chan int))
	require.ErrorIs(t, err, cache.ErrMarshal)
}
