package cached_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/cached"
	"github.com/krisalay/cached/engine"
	"github.com/krisalay/cached/keys"
)

// Both engines must satisfy the root contract.
var (
	_ cached.Engine = (*engine.Memory)(nil)
	_ cached.Engine = (*engine.File)(nil)
)

//
// ================= TEST LOADER =================
//

// countingLoader squares integer keys and counts how often it runs.
type countingLoader struct {
	calls atomic.Int32
	fail  error
}

func (l *countingLoader) Load(_ context.Context, key any) (any, error) {
	l.calls.Add(1)
	if l.fail != nil {
		return nil, l.fail
	}
	n := key.(int)
	return n * n, nil
}

//
// ================= LOADING CACHE =================
//

func TestLoadingCacheComputesOnFirstMiss(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	lc := cached.NewLoadingCache(engine.NewMemory(), time.Minute, loader)

	v, err := lc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.EqualValues(t, 1, loader.calls.Load())

	// Second call within the ttl window: served from cache.
	v, err = lc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestLoadingCacheDistinctKeysLoadIndependently(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	lc := cached.NewLoadingCache(engine.NewMemory(), time.Minute, loader)

	v3, err := lc.Get(ctx, 3)
	require.NoError(t, err)
	v4, err := lc.Get(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 9, v3)
	assert.Equal(t, 16, v4)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestLoadingCacheReloadsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	lc := cached.NewLoadingCache(engine.NewMemory(), 50*time.Millisecond, loader)

	_, err := lc.Get(ctx, 3)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	_, err = lc.Get(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestLoadingCacheLoaderErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	loader := &countingLoader{fail: boom}
	eng := engine.NewMemory()
	lc := cached.NewLoadingCache(eng, time.Minute, loader)

	_, err := lc.Get(ctx, 3)
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, eng.Size(), "failed load must store nothing")

	// The failure is not cached either: the next Get tries again.
	loader.fail = nil
	v, err := lc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestLoadingCacheOverFileEngine(t *testing.T) {
	ctx := context.Background()
	f, err := engine.NewFile(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer f.Close()

	loader := &countingLoader{}
	lc := cached.NewLoadingCache(f, time.Minute, loader)

	v, err := lc.Get(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 25, v)

	v, err = lc.Get(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 25, v)
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestLoadingCacheConcurrentGets(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	lc := cached.NewLoadingCache(engine.NewMemory(), time.Minute, loader)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := lc.Get(ctx, 7)
			if err != nil || v != 49 {
				t.Errorf("get = %v, err = %v", v, err)
			}
		}()
	}
	wg.Wait()
}

//
// ================= HELPERS ON ENGINE =================
//

func TestGetDefault(t *testing.T) {
	ctx := context.Background()
	eng := engine.NewMemory()

	v, err := cached.GetDefault(ctx, eng, keys.Raw("missing"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	require.NoError(t, eng.Set(ctx, keys.Raw("present"), "stored", time.Minute))
	v, err = cached.GetDefault(ctx, eng, keys.Raw("present"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "stored", v)
}

func TestGetAsTypedFromFileEngine(t *testing.T) {
	type result struct {
		Answer  int
		Comment string
	}

	ctx := context.Background()
	f, err := engine.NewFile(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer f.Close()

	in := result{Answer: 42, Comment: "deep thought"}
	require.NoError(t, f.Set(ctx, keys.Raw("r"), in, time.Minute))

	out, ok, err := cached.GetAs[result](ctx, f, keys.Raw("r"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestDefaultEngineIsShared(t *testing.T) {
	assert.Same(t, engine.DefaultMemory(), engine.DefaultMemory())
}

//
// ================= CROSS-ENGINE CONTRACT =================
//

// Both engines honor the same observable contract; run the shared scenarios
// against each.
func TestEngineContract(t *testing.T) {
	ctx := context.Background()

	engines := map[string]cached.Engine{
		"memory": engine.NewMemory(),
	}
	f, err := engine.NewFile(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer f.Close()
	engines["file"] = f

	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			// set/get
			require.NoError(t, eng.Set(ctx, keys.Raw("k"), "v", time.Minute))
			v, ok, err := eng.Get(ctx, keys.Raw("k"))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "v", v)

			// overwrite, last write wins
			require.NoError(t, eng.Set(ctx, keys.Raw("k"), "v2", time.Minute))
			v, _, _ = eng.Get(ctx, keys.Raw("k"))
			assert.Equal(t, "v2", v)

			// elapsed ttl is a miss
			require.NoError(t, eng.Set(ctx, keys.Raw("gone"), "v", 0))
			_, ok, err = eng.Get(ctx, keys.Raw("gone"))
			require.NoError(t, err)
			assert.False(t, ok)

			// unsupported key values surface a distinct error
			err = eng.Set(ctx, keys.Raw(fmt.Print), "v", time.Minute)
			assert.ErrorIs(t, err, cached.ErrSerialization)
		})
	}
}
