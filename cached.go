/*
Package cached is an embeddable caching layer with time-based expiry and two
interchangeable engines: a process-local memory cache and a persistent
SQLite-backed file cache.

Entries are addressed by canonical keys derived from arbitrary values (see
the keys package), carry an absolute expiry computed at write time, and are
evicted lazily when a read finds them stale. On top of the engines sit a
LoadingCache, which computes a missing value through a loader on first miss,
and memoization wrappers that transparently cache function results keyed by
the function's identity and its arguments.
*/
package cached

import (
	"context"
	"time"

	"github.com/krisalay/cached/codec"
	"github.com/krisalay/cached/keys"
	"github.com/krisalay/cached/types"
)

// Errors returned by engines, re-exported for callers who only import the
// root package.
var (
	ErrSerialization = types.ErrSerialization
	ErrStorage       = types.ErrStorage
)

/*
Engine is the capability every cache backend provides. The engine package has
the two implementations; LoadingCache and the memoization wrappers accept
either.

Get reports a miss through its second return value rather than a sentinel
default, so "not cached" and "cached nil" stay distinguishable. Set overwrites
unconditionally: last write wins.
*/
type Engine interface {
	// Set stores value under key, valid until now + ttl. A non-positive ttl
	// writes an entry that is already expired.
	Set(ctx context.Context, key keys.Key, value any, ttl time.Duration) error

	// Get returns the value stored under key and whether a valid entry was
	// found. Expired entries are removed on the way and count as misses.
	Get(ctx context.Context, key keys.Key) (any, bool, error)

	// Remove deletes key immediately. Idempotent.
	Remove(ctx context.Context, key keys.Key) error

	// HashKey resolves key to the canonical storage key, using the engine's
	// codec and namespace. Equal keys resolve equally on every call.
	HashKey(key keys.Key) (string, error)

	// Codec returns the serializer/hasher unit the engine is configured with.
	Codec() codec.Codec

	// Close releases the engine's resources.
	Close() error
}

// GetDefault returns the stored value, or def when nothing valid is stored.
// Storage and key-derivation failures still surface alongside def.
func GetDefault(ctx context.Context, eng Engine, key keys.Key, def any) (any, error) {
	v, ok, err := eng.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// GetAs returns the stored value decoded as T.
//
// The memory engine stores values as-is, so a plain type assertion succeeds.
// The file engine round-trips values through its codec and hands back generic
// forms (int64, map[string]any); GetAs re-encodes those into T. A stored
// value that cannot become a T counts as a miss, never as a hard fault.
func GetAs[T any](ctx context.Context, eng Engine, key keys.Key) (T, bool, error) {
	var zero T
	v, ok, err := eng.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if t, ok := v.(T); ok {
		return t, true, nil
	}

	var t T
	if err := codec.Convert(eng.Codec(), v, &t); err != nil {
		return zero, false, nil
	}
	return t, true, nil
}
