package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/lbo"
	"lbo-analyzer/internal/model"
)

func sampleInputs(t *testing.T) model.Inputs {
	t.Helper()
	in, err := config.SampleDeal().ToInputs()
	require.NoError(t, err)
	return in
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, s.Set(ctx, "gone", []byte("3"), time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	_, ok, _ = s.Get(ctx, "gone")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	s.purgeExpired(time.Now())
	s.mu.RLock()
	_, present := s.items["gone"]
	s.mu.RUnlock()
	assert.False(t, present)

	require.NoError(t, s.Delete(ctx, "a"))
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	v, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
	v[1] = 'y'
	v2, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v2))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(&redis.Options{Addr: mr.Addr()}, "lbo:")
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("lbo:k"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k2", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k2"))
	assert.False(t, mr.Exists("lbo:k2"))
}

func TestMemo_HitAfterMiss(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewMemo(lbo.New(), store, time.Hour, nil)
	ctx := context.Background()
	in := sampleInputs(t)

	first, hit, err := m.Run(ctx, in)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := m.Run(ctx, in)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	byID, ok := m.Lookup(ctx, in.Key())
	require.True(t, ok)
	assert.Equal(t, *first.IRR, *byID.IRR)

	_, ok = m.Lookup(ctx, "missing")
	assert.False(t, ok)
}

func TestMemo_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(&redis.Options{Addr: mr.Addr()}, "lbo:")
	defer store.Close()
	m := NewMemo(nil, store, time.Minute, nil)
	ctx := context.Background()
	in := sampleInputs(t)

	first, hit, err := m.Run(ctx, in)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, mr.Exists("lbo:"+in.Key()))

	// A second process sharing the same Redis sees the result.
	other := NewMemo(nil, store, time.Minute, nil)
	second, hit, err := other.Run(ctx, in)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
}

func TestMemo_StoreFailureFallsBackToCompute(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}, "lbo:")
	defer store.Close()
	mr.Close()

	m := NewMemo(nil, store, time.Minute, nil)
	res, hit, err := m.Run(context.Background(), sampleInputs(t))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, res.IRR)
}

func TestMemo_CorruptEntryIsMiss(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	in := sampleInputs(t)
	require.NoError(t, store.Set(context.Background(), in.Key(), []byte("{not json"), 0))

	m := NewMemo(nil, store, 0, nil)
	res, hit, err := m.Run(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, res)
}

func TestMemo_InvalidInputsNotCached(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewMemo(nil, store, 0, nil)

	in := sampleInputs(t)
	in.Capital.EntryEBITDA = -1
	_, _, err := m.Run(context.Background(), in)
	assert.ErrorIs(t, err, lbo.ErrInvalidInputs)
	assert.Equal(t, 0, store.Len())
}

func TestMemo_NoStore(t *testing.T) {
	m := NewMemo(nil, nil, 0, nil)
	in := sampleInputs(t)
	_, hit, err := m.Run(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = m.Run(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, hit)
	_, ok := m.Lookup(context.Background(), in.Key())
	assert.False(t, ok)
}

func TestMemo_ConcurrentCallers(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewMemo(nil, store, 0, nil)
	in := sampleInputs(t)

	const n = 16
	results := make([]*lbo.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _, err := m.Run(context.Background(), in)
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, *results[0].MOIC, *results[i].MOIC)
		assert.NotSame(t, results[0], results[i])
	}
	assert.Equal(t, 1, store.Len())
}

func TestMemo_CancelledContext(t *testing.T) {
	m := NewMemo(nil, nil, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := m.Run(ctx, sampleInputs(t))
	// The engine may win the race against cancellation; either outcome is valid.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
