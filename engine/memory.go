package engine

import (
	"context"
	"time"

	"github.com/krisalay/cached/codec"
	"github.com/krisalay/cached/keys"
	"github.com/krisalay/cached/types"
)

/*
Memory is the process-local engine.

Values are stored by reference, exactly as the caller handed them over: no
serialization on the write path, no copy on the read path. Mutating a stored
pointer is therefore visible through the cache. Nothing survives a restart.

The context parameters exist for contract symmetry with the File engine;
memory operations complete instantly and never consult them.
*/
type Memory struct {
	store *cowStore
	cfg   config
}

// NewMemory creates a memory engine.
func NewMemory(opts ...Option) *Memory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory{
		store: newCOWStore(),
		cfg:   cfg,
	}
}

// Codec returns the codec this engine derives keys with.
func (m *Memory) Codec() codec.Codec { return m.cfg.codec }

// HashKey resolves a key to the canonical storage key this engine would use.
func (m *Memory) HashKey(key keys.Key) (string, error) {
	return key.Resolve(m.cfg.namespace, m.cfg.codec)
}

// Set stores value under key with an absolute expiry of now + ttl. A later
// Set with the same key overwrites: last write wins, no versioning.
func (m *Memory) Set(_ context.Context, key keys.Key, value any, ttl time.Duration) error {
	hashed, err := m.HashKey(key)
	if err != nil {
		return err
	}

	now := time.Now()
	m.store.Put(hashed, &types.Entry{
		Key:       hashed,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	return nil
}

// Get returns the value stored under key. The second return is false when
// nothing valid is stored; an expired entry is removed on the way (lazy
// eviction, the only kind this cache does).
func (m *Memory) Get(_ context.Context, key keys.Key) (any, bool, error) {
	hashed, err := m.HashKey(key)
	if err != nil {
		return nil, false, err
	}

	ent, ok := m.store.Get(hashed)
	if !ok {
		m.cfg.metrics.Miss()
		return nil, false, nil
	}
	if ent.Expired(time.Now()) {
		m.cfg.metrics.Expire()
		m.store.Delete(hashed)
		m.cfg.metrics.Miss()
		return nil, false, nil
	}

	m.cfg.metrics.Hit()
	return ent.Value, true, nil
}

// Remove deletes a key immediately. Removing an absent key is a no-op.
func (m *Memory) Remove(_ context.Context, key keys.Key) error {
	hashed, err := m.HashKey(key)
	if err != nil {
		return err
	}
	m.store.Delete(hashed)
	return nil
}

// Size returns the number of entries currently held, including expired ones
// that no Get has visited yet.
func (m *Memory) Size() int64 { return m.store.Size() }

// Close releases nothing; it exists for contract symmetry.
func (m *Memory) Close() error { return nil }
