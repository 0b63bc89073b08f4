package cached

import (
	"context"
	"reflect"
	"runtime"
	"time"

	"github.com/krisalay/cached/keys"
)

// This file implements transparent memoization: wrapping a function in a new
// function of identical signature that consults a cache engine before and
// after invoking the original.
//
// The cache key combines the wrapped function's identity with its arguments,
// serialized and hashed like any other raw key. Function identity is the
// fully qualified name reported by the runtime, so it is stable across
// processes for named functions and methods. Wrapping anonymous closures
// works within one binary but their generated names (pkg.Caller.func1) are
// only as stable as the surrounding code.

// funcName returns the fully qualified name of fn, e.g.
// "github.com/krisalay/cached_test.slowSquare".
func funcName(fn any) string {
	return runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
}

// call is the shared memoization path: one derived key, one lookup, one
// compute-and-store on miss.
func call[R any](ctx context.Context, eng Engine, ttl time.Duration, material []any, compute func() (R, error)) (R, error) {
	key := keys.Raw(material)

	if v, ok, err := GetAs[R](ctx, eng, key); err != nil {
		var zero R
		return zero, err
	} else if ok {
		return v, nil
	}

	result, err := compute()
	if err != nil {
		var zero R
		return zero, err
	}
	if err := eng.Set(ctx, key, result, ttl); err != nil {
		var zero R
		return zero, err
	}
	return result, nil
}

// Memoize wraps a one-argument function so that calls with equal arguments
// within the ttl window execute the body once and share the cached result.
//
// The argument must be representable by the engine's codec; a value it cannot
// serialize surfaces as ErrSerialization instead of bypassing the cache.
func Memoize[A, R any](eng Engine, ttl time.Duration, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	name := funcName(fn)
	return func(ctx context.Context, a A) (R, error) {
		return call(ctx, eng, ttl, []any{name, a}, func() (R, error) {
			return fn(ctx, a)
		})
	}
}

// Memoize2 is Memoize for two-argument functions.
func Memoize2[A, B, R any](eng Engine, ttl time.Duration, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	name := funcName(fn)
	return func(ctx context.Context, a A, b B) (R, error) {
		return call(ctx, eng, ttl, []any{name, a, b}, func() (R, error) {
			return fn(ctx, a, b)
		})
	}
}

/*
MemoizeMethod wraps a method expression, e.g.

	lookup := cached.MemoizeMethod(eng, ttl, (*Client).Lookup, false)
	v, err := lookup(client, ctx, query)

includeReceiver decides whether the receiver participates in the derived key.
Leave it false when the method's result depends only on its arguments, so all
instances share cached results; set it true when results depend on instance
state, in which case the receiver must be serializable by the engine's codec.
*/
func MemoizeMethod[T, A, R any](eng Engine, ttl time.Duration, fn func(T, context.Context, A) (R, error), includeReceiver bool) func(T, context.Context, A) (R, error) {
	name := funcName(fn)
	return func(recv T, ctx context.Context, a A) (R, error) {
		material := []any{name, a}
		if includeReceiver {
			material = []any{name, recv, a}
		}
		return call(ctx, eng, ttl, material, func() (R, error) {
			return fn(recv, ctx, a)
		})
	}
}
