package engine

import (
	"sync"
	"sync/atomic"

	"github.com/krisalay/cached/types"
)

/*
cowStore is the in-memory entry store behind the Memory engine.

It is a copy-on-write map: readers always see an immutable snapshot and never
take a lock, writers build a new map and swap it in atomically. Reads vastly
outnumber writes in the memoization workloads this cache targets, so paying
the copy on the write path is the right trade.
*/
type cowStore struct {
	// mu serializes writers. Readers never touch it.
	mu sync.Mutex

	// data holds the current map[string]*types.Entry snapshot.
	data atomic.Value

	// size mirrors len of the current snapshot so callers can ask without
	// loading the map.
	size atomic.Int64
}

func newCOWStore() *cowStore {
	s := &cowStore{}
	s.data.Store(make(map[string]*types.Entry))
	return s
}

// Get retrieves an entry from the current snapshot. Lock-free.
func (s *cowStore) Get(key string) (*types.Entry, bool) {
	m := s.data.Load().(map[string]*types.Entry)
	ent, ok := m[key]
	return ent, ok
}

// Put inserts or replaces an entry. The whole map is copied, mutated, and
// swapped in; a concurrent reader sees either the old snapshot or the new
// one, never a half-written entry.
func (s *cowStore) Put(key string, ent *types.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.data.Load().(map[string]*types.Entry)
	n := make(map[string]*types.Entry, len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = ent

	s.data.Store(n)
	s.size.Store(int64(len(n)))
}

// Delete removes an entry, if present, via the same copy-and-swap.
func (s *cowStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.data.Load().(map[string]*types.Entry)
	if _, ok := old[key]; !ok {
		return
	}
	n := make(map[string]*types.Entry, len(old))
	for k, v := range old {
		if k != key {
			n[k] = v
		}
	}

	s.data.Store(n)
	s.size.Store(int64(len(n)))
}

// Size returns the number of stored entries, expired ones included until a
// Get lazily removes them.
func (s *cowStore) Size() int64 {
	return s.size.Load()
}
