package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errLoad = errors.New("standings query failed")

func TestStore_GetOrLoadSharesConcurrentLoads(t *testing.T) {
	t.Parallel()

	s := NewStore[string](time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "table", nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.GetOrLoad(context.Background(), "standings:s-1", loader)
			if err == nil {
				results[i] = v
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		require.Equal(t, "table", v)
	}
}

func TestStore_EntriesExpire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore[int](time.Minute)
	now := time.Date(2026, time.March, 4, 19, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	s.Set(ctx, "week:w-1", 3)
	now = now.Add(59 * time.Second)
	v, ok := s.Get(ctx, "week:w-1")
	require.True(t, ok)
	require.Equal(t, 3, v)

	now = now.Add(time.Second)
	_, ok = s.Get(ctx, "week:w-1")
	require.False(t, ok)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore[int](0)
	now := time.Date(2026, time.March, 4, 19, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	s.Set(ctx, "k", 1)
	now = now.Add(365 * 24 * time.Hour)
	_, ok := s.Get(ctx, "k")
	require.True(t, ok)
}

func TestStore_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	s := NewStore[string](time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errLoad
		}
		return "table", nil
	}

	_, err := s.GetOrLoad(context.Background(), "k", loader)
	require.ErrorIs(t, err, errLoad)
	v, err := s.GetOrLoad(context.Background(), "k", loader)
	require.NoError(t, err)
	require.Equal(t, "table", v)
	require.Equal(t, int32(2), calls.Load())
}

func TestStore_DeleteDuringLoadDropsStaleResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore[string](time.Minute)

	v, err := s.GetOrLoad(ctx, "standings:s-1", func(ctx context.Context) (string, error) {
		s.Delete(ctx, "standings:s-1")
		return "before finalize", nil
	})
	require.NoError(t, err)
	require.Equal(t, "before finalize", v)

	_, ok := s.Get(ctx, "standings:s-1")
	require.False(t, ok)
}

func TestStore_NilLoader(t *testing.T) {
	t.Parallel()

	_, err := NewStore[int](time.Minute).GetOrLoad(context.Background(), "k", nil)
	require.Error(t, err)
}
