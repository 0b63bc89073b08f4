package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/krisalay/cached"
	"github.com/krisalay/cached/engine"
	"github.com/krisalay/cached/keys"
)

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")

	const (
		preloadKeys = 10000
		goroutines  = 50
		opsPerG     = 2000
	)

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Preload Keys :", preloadKeys)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops each     :", opsPerG)

	dir, err := os.MkdirTemp("", "cached-bench-")
	if err != nil {
		fmt.Println("temp dir:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	file, err := engine.NewFile(filepath.Join(dir, "bench.db"))
	if err != nil {
		fmt.Println("open file engine:", err)
		os.Exit(1)
	}
	defer file.Close()

	engines := []struct {
		name string
		eng  cached.Engine
	}{
		{"memory", engine.NewMemory()},
		{"file", file},
	}

	for _, e := range engines {
		run(ctx, e.name, e.eng, preloadKeys, goroutines, opsPerG)
	}
}

// run preloads the engine and hammers it with mixed reads and writes.
func run(ctx context.Context, name string, eng cached.Engine, preload, goroutines, ops int) {
	fmt.Printf("\n---------------- %s ----------------\n", name)

	for i := 0; i < preload; i++ {
		if err := eng.Set(ctx, keys.Raw(i), i, time.Hour); err != nil {
			fmt.Println("preload:", err)
			return
		}
	}

	start := time.Now()
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				k := keys.Raw((seed*ops + i) % preload)
				if i%10 == 0 {
					_ = eng.Set(ctx, k, i, time.Hour)
				} else {
					_, _, _ = eng.Get(ctx, k)
				}
			}
		}(g)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := goroutines * ops
	fmt.Printf("Total Ops  : %d\n", total)
	fmt.Printf("Elapsed    : %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput : %.0f ops/sec\n", float64(total)/elapsed.Seconds())
}
