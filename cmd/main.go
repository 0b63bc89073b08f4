package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/krisalay/cached"
	"github.com/krisalay/cached/engine"
	"github.com/krisalay/cached/keys"
)

// ================= METRICS =================

type metrics struct {
	mu      sync.Mutex
	hits    int
	misses  int
	expired int
}

func (m *metrics) Hit()    { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *metrics) Miss()   { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *metrics) Expire() { m.mu.Lock(); m.expired++; m.mu.Unlock() }

func (m *metrics) Print() {
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("HITS    : %d\n", m.hits)
	fmt.Printf("MISSES  : %d\n", m.misses)
	fmt.Printf("EXPIRED : %d\n", m.expired)
}

// ================= MAIN =================

func main() {
	ctx := context.Background()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	dir, err := os.MkdirTemp("", "cached-demo-")
	if err != nil {
		log.Fatal().Err(err).Msg("temp dir")
	}
	defer os.RemoveAll(dir)

	m := &metrics{}

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("ENGINES : memory + file (sqlite)")
	fmt.Println("CODEC   : msgpack, sha256 keys")
	fmt.Println("EVICTION: lazy, on read only")

	memory := engine.NewMemory(engine.WithMetrics(m))
	file, err := engine.NewFile(
		filepath.Join(dir, "demo.db"),
		engine.WithMetrics(m),
		engine.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("open file engine")
	}
	defer file.Close()

	// ====================================================
	fmt.Println("\n==================== 1) SET / GET ====================")
	memory.Set(ctx, keys.Raw("a"), "alpha", time.Minute)
	v, _, _ := memory.Get(ctx, keys.Raw("a"))
	fmt.Println("MEMORY → GET a =", v)

	file.Set(ctx, keys.Raw("a"), "alpha", time.Minute)
	v, _, _ = file.Get(ctx, keys.Raw("a"))
	fmt.Println("FILE   → GET a =", v)

	// ====================================================
	fmt.Println("\n==================== 2) TTL EXPIRY ====================")
	memory.Set(ctx, keys.Raw("x"), "temp-value", 500*time.Millisecond)
	fmt.Println("MEMORY → PUT x (TTL = 500ms)")

	time.Sleep(time.Second)

	v, err = cached.GetDefault(ctx, memory, keys.Raw("x"), "<expired>")
	if err != nil {
		log.Error().Err(err).Msg("get")
	}
	fmt.Println("MEMORY → GET x after TTL =", v)

	// ====================================================
	fmt.Println("\n==================== 3) LOADING CACHE ====================")
	loads := 0
	lc := cached.NewLoadingCache(memory, time.Minute,
		cached.LoaderFunc(func(_ context.Context, key any) (any, error) {
			loads++
			fmt.Println("LOADER → computing", key)
			n := key.(int)
			return n * n, nil
		}))

	for i := 0; i < 3; i++ {
		v, err := lc.Get(ctx, 12)
		if err != nil {
			log.Error().Err(err).Msg("loading get")
		}
		fmt.Printf("CACHE  → GET 12 = %v (loader runs so far: %d)\n", v, loads)
	}

	// ====================================================
	fmt.Println("\n==================== 4) MEMOIZATION ====================")
	slowDouble := func(_ context.Context, n int) (int, error) {
		fmt.Println("FUNC   → running body for", n)
		time.Sleep(100 * time.Millisecond)
		return n * 2, nil
	}
	double := cached.Memoize(file, time.Minute, slowDouble)

	for _, n := range []int{21, 21, 7} {
		start := time.Now()
		v, err := double(ctx, n)
		if err != nil {
			log.Error().Err(err).Msg("memoized call")
		}
		fmt.Printf("CALL   → double(%d) = %v in %s\n", n, v, time.Since(start).Round(time.Millisecond))
	}

	// ====================================================
	fmt.Println("\n==================== 5) PERSISTENCE ====================")
	reopened, err := engine.NewFile(filepath.Join(dir, "demo.db"), engine.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("reopen file engine")
	}
	v, _, _ = reopened.Get(ctx, keys.Raw("a"))
	fmt.Println("FILE   → GET a after reopen =", v)
	reopened.Close()

	// ====================================================
	fmt.Println("\n==================== 6) MAINTENANCE ====================")
	file.Set(ctx, keys.Raw("gone"), "already expired", 0)
	if err := file.CleanUp(ctx); err != nil {
		log.Error().Err(err).Msg("clean up")
	}
	n, _ := file.Size(ctx)
	fmt.Println("FILE   → rows after clean up =", n)

	// ====================================================
	m.Print()

	fmt.Println("\n==================== SHUTDOWN ====================")
	fmt.Println("SYSTEM → caches closed cleanly")
}
