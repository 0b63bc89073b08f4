package cached

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/krisalay/cached/keys"
)

/*
Loader is how a LoadingCache computes a value it does not have. It is called
with the caller's original key, never the hashed form.

A Loader is typically a database query or an API call.
*/
type Loader interface {
	Load(ctx context.Context, key any) (any, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, key any) (any, error)

func (f LoaderFunc) Load(ctx context.Context, key any) (any, error) {
	return f(ctx, key)
}

/*
LoadingCache composes an engine with a loader so callers never see a miss:
Get either returns the cached value or computes, stores, and returns it.

Concurrent Gets for the same uncached key are collapsed into one loader call
per flight; goroutines arriving while a load is in progress wait for its
result instead of loading again. If the loader fails, nothing is stored and
the failure reaches every waiting caller untouched.
*/
type LoadingCache struct {
	engine Engine
	ttl    time.Duration
	loader Loader
	sf     singleflight.Group
}

// NewLoadingCache builds a loading cache over eng. Values computed by loader
// are stored with the given ttl.
func NewLoadingCache(eng Engine, ttl time.Duration, loader Loader) *LoadingCache {
	return &LoadingCache{
		engine: eng,
		ttl:    ttl,
		loader: loader,
	}
}

// Get returns the value for key, invoking the loader on a miss. A key that is
// already a keys.Key is used as-is (hashed or identifier-scoped keys work);
// anything else is treated as a raw key value.
func (c *LoadingCache) Get(ctx context.Context, key any) (any, error) {
	k, ok := key.(keys.Key)
	if !ok {
		k = keys.Raw(key)
	}

	v, found, err := c.engine.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	if found {
		return v, nil
	}

	// One flight per canonical key: the engine's HashKey is exactly the
	// identity under which the entry would be stored.
	flightKey, err := c.engine.HashKey(k)
	if err != nil {
		return nil, err
	}

	v, err, _ = c.sf.Do(flightKey, func() (any, error) {
		val, err := c.loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if err := c.engine.Set(ctx, k, val, c.ttl); err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
