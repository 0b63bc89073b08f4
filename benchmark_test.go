package cached_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/krisalay/cached"
	"github.com/krisalay/cached/engine"
	"github.com/krisalay/cached/keys"
)

//
// ================= MEMORY ENGINE =================
//

func BenchmarkMemoryGetHit(b *testing.B) {
	ctx := context.Background()
	m := engine.NewMemory()
	m.Set(ctx, keys.Raw("key"), "value", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Get(ctx, keys.Raw("key"))
	}
}

func BenchmarkMemoryGetMiss(b *testing.B) {
	ctx := context.Background()
	m := engine.NewMemory()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Get(ctx, keys.Raw("missing"))
	}
}

func BenchmarkMemorySet(b *testing.B) {
	ctx := context.Background()
	m := engine.NewMemory()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Set(ctx, keys.Raw(i%1024), i, time.Hour)
	}
}

func BenchmarkMemoryParallelGet(b *testing.B) {
	ctx := context.Background()
	m := engine.NewMemory()
	m.Set(ctx, keys.Raw("key"), "value", time.Hour)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Get(ctx, keys.Raw("key"))
		}
	})
}

//
// ================= FILE ENGINE =================
//

func newBenchmarkFile(b *testing.B) *engine.File {
	b.Helper()
	f, err := engine.NewFile(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("open file engine: %v", err)
	}
	b.Cleanup(func() { _ = f.Close() })
	return f
}

func BenchmarkFileSet(b *testing.B) {
	ctx := context.Background()
	f := newBenchmarkFile(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Set(ctx, keys.Raw(i%1024), i, time.Hour)
	}
}

func BenchmarkFileGetHit(b *testing.B) {
	ctx := context.Background()
	f := newBenchmarkFile(b)
	f.Set(ctx, keys.Raw("key"), "value", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Get(ctx, keys.Raw("key"))
	}
}

//
// ================= MEMOIZATION =================
//

func BenchmarkMemoizedCall(b *testing.B) {
	ctx := context.Background()
	fn := cached.Memoize(engine.NewMemory(), time.Hour,
		func(_ context.Context, n int) (string, error) {
			return fmt.Sprintf("result-%d", n), nil
		})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fn(ctx, i%32)
	}
}
