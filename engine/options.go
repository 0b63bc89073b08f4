// Package engine provides the two cache engines: Memory (process-local) and
// File (SQLite-backed, survives restarts). Both share the same contract:
// values are addressed by canonical keys, every entry carries an absolute
// expiry, and expired entries are removed lazily on read, never by a
// background sweeper.
package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/krisalay/cached/codec"
	"github.com/krisalay/cached/types"
)

type config struct {
	codec           codec.Codec
	namespace       string
	metrics         types.Metrics
	log             zerolog.Logger
	table           string
	cleanupInterval time.Duration
}

func defaultConfig() config {
	return config{
		codec:           codec.Msgpack{},
		metrics:         types.NoopMetrics{},
		log:             zerolog.Nop(),
		table:           "cached",
		cleanupInterval: 15 * time.Minute,
	}
}

// Option configures an engine at construction time.
type Option func(*config)

// WithCodec replaces the default Msgpack codec. The codec is a unit: it
// changes both the stored representation and the key derivation.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithNamespace scopes every key of this engine instance with a prefix, so
// several independent logical caches can share one process or one store file.
func WithNamespace(ns string) Option {
	return func(cfg *config) { cfg.namespace = ns }
}

// WithMetrics installs a Metrics sink. Nil is replaced by NoopMetrics.
func WithMetrics(m types.Metrics) Option {
	return func(cfg *config) {
		if m != nil {
			cfg.metrics = m
		}
	}
}

// WithLogger installs a logger. Engines log degraded reads and maintenance
// passes; the default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(cfg *config) { cfg.log = log }
}

// WithTable sets the table name used by the file engine, allowing multiple
// logical caches in one database file. Ignored by the memory engine.
func WithTable(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.table = name
		}
	}
}

// WithCleanupInterval sets how often the file engine opportunistically deletes
// all expired rows, checked on access. Zero or negative disables the periodic
// pass (CleanUp can still be called explicitly). Ignored by the memory engine.
func WithCleanupInterval(d time.Duration) Option {
	return func(cfg *config) { cfg.cleanupInterval = d }
}
