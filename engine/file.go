package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/krisalay/cached/codec"
	"github.com/krisalay/cached/keys"
	"github.com/krisalay/cached/types"
)

// tableNamePattern is what WithTable accepts. The table name is interpolated
// into SQL, so it is limited to plain identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

/*
File is the persistent engine, backed by a single SQLite table:

	key     TEXT PRIMARY KEY  -- canonical hashed key
	data    BLOB              -- value serialized through the codec
	expires INTEGER           -- absolute expiry, unix milliseconds

Entries survive process restarts until they expire or are overwritten. There
is no background reaper: expired rows are deleted when a Get visits them, and
in bulk by CleanUp, which also runs opportunistically on access once the
cleanup interval has elapsed.

Concurrent access from multiple processes sharing the file relies on SQLite's
own locking (WAL mode, busy timeout); no application-level lock is layered on
top.
*/
type File struct {
	db   *sql.DB
	path string
	cfg  config

	// cleanupMu guards lastCleanup only; data consistency is SQLite's job.
	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// DefaultPath returns the database file used when NewFile is given an empty
// path: <user cache dir>/cached/cached.db.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve cache dir: %v", types.ErrStorage, err)
	}
	return filepath.Join(base, "cached", "cached.db"), nil
}

// NewFile opens (creating if necessary) a file engine at path. An empty path
// selects DefaultPath. Setup is idempotent: opening an existing database with
// the same table name reuses it, and a pass deleting already-expired rows
// runs once at open.
func NewFile(path string, opts ...Option) (*File, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !tableNamePattern.MatchString(cfg.table) {
		return nil, fmt.Errorf("%w: invalid table name %q", types.ErrStorage, cfg.table)
	}

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", types.ErrStorage, err)
	}

	// WAL keeps concurrent readers off the writers' backs; the busy timeout
	// makes cross-process write contention block briefly instead of failing.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrStorage, path, err)
	}

	f := &File{db: db, path: path, cfg: cfg}

	ctx := context.Background()
	schema := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (key TEXT PRIMARY KEY, data BLOB NOT NULL, expires INTEGER NOT NULL)`,
		cfg.table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create table %s: %v", types.ErrStorage, cfg.table, err)
	}
	f.cfg.log.Debug().Str("path", path).Str("table", cfg.table).Msg("file cache ready")

	if err := f.CleanUp(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return f, nil
}

// Path returns the database file this engine writes to.
func (f *File) Path() string { return f.path }

// Codec returns the codec this engine serializes values and derives keys with.
func (f *File) Codec() codec.Codec { return f.cfg.codec }

// HashKey resolves a key to the canonical storage key this engine would use.
func (f *File) HashKey(key keys.Key) (string, error) {
	return key.Resolve(f.cfg.namespace, f.cfg.codec)
}

// Set serializes value through the codec and upserts the row, overwriting any
// entry already stored under the key. Serialization and storage failures both
// surface to the caller; a failed write never leaves a partial row behind.
func (f *File) Set(ctx context.Context, key keys.Key, value any, ttl time.Duration) error {
	f.maybeCleanUp(ctx)

	hashed, err := f.HashKey(key)
	if err != nil {
		return err
	}
	blob, err := f.cfg.codec.Marshal(value)
	if err != nil {
		return err
	}

	expires := time.Now().Add(ttl).UnixMilli()
	upsert := fmt.Sprintf(`INSERT OR REPLACE INTO %q (key, data, expires) VALUES (?, ?, ?)`, f.cfg.table)
	if _, err := f.db.ExecContext(ctx, upsert, hashed, blob, expires); err != nil {
		return fmt.Errorf("%w: upsert: %v", types.ErrStorage, err)
	}
	return nil
}

// Get reads the row for key and deserializes it. An expired row is deleted
// and reported as a miss. A row that no longer deserializes is also deleted
// and reported as a miss: a corrupt cache entry must never break the caller's
// control flow, only cost a recomputation.
func (f *File) Get(ctx context.Context, key keys.Key) (any, bool, error) {
	f.maybeCleanUp(ctx)

	hashed, err := f.HashKey(key)
	if err != nil {
		return nil, false, err
	}

	query := fmt.Sprintf(`SELECT data, expires FROM %q WHERE key = ?`, f.cfg.table)
	var blob []byte
	var expires int64
	if err := f.db.QueryRowContext(ctx, query, hashed).Scan(&blob, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			f.cfg.metrics.Miss()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: select: %v", types.ErrStorage, err)
	}

	if expires <= time.Now().UnixMilli() {
		f.cfg.metrics.Expire()
		f.deleteRow(ctx, hashed)
		f.cfg.metrics.Miss()
		return nil, false, nil
	}

	var value any
	if err := f.cfg.codec.Unmarshal(blob, &value); err != nil {
		f.cfg.log.Warn().Err(err).Str("key", hashed).Msg("dropping unreadable cache entry")
		f.deleteRow(ctx, hashed)
		f.cfg.metrics.Miss()
		return nil, false, nil
	}

	f.cfg.metrics.Hit()
	return value, true, nil
}

// Remove deletes a key immediately. Removing an absent key is a no-op.
func (f *File) Remove(ctx context.Context, key keys.Key) error {
	hashed, err := f.HashKey(key)
	if err != nil {
		return err
	}
	del := fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, f.cfg.table)
	if _, err := f.db.ExecContext(ctx, del, hashed); err != nil {
		return fmt.Errorf("%w: delete: %v", types.ErrStorage, err)
	}
	return nil
}

// CleanUp deletes every expired row in one pass. Gets already remove expired
// rows they visit; this handles the rows nothing asks for anymore.
func (f *File) CleanUp(ctx context.Context) error {
	del := fmt.Sprintf(`DELETE FROM %q WHERE expires <= ?`, f.cfg.table)
	res, err := f.db.ExecContext(ctx, del, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: clean up: %v", types.ErrStorage, err)
	}

	f.cleanupMu.Lock()
	f.lastCleanup = time.Now()
	f.cleanupMu.Unlock()

	if removed, err := res.RowsAffected(); err == nil && removed > 0 {
		f.cfg.log.Debug().Int64("removed", removed).Msg("cleaned up expired cache entries")
	}
	return nil
}

// maybeCleanUp runs CleanUp when the configured interval has elapsed since
// the last pass. It is called on the access paths, so a cache nobody touches
// is never swept; that matches the no-background-reaper stance.
func (f *File) maybeCleanUp(ctx context.Context) {
	if f.cfg.cleanupInterval <= 0 {
		return
	}

	f.cleanupMu.Lock()
	due := time.Since(f.lastCleanup) >= f.cfg.cleanupInterval
	f.cleanupMu.Unlock()
	if !due {
		return
	}

	// Best-effort: the access that triggered the pass reports its own errors.
	if err := f.CleanUp(ctx); err != nil {
		f.cfg.log.Warn().Err(err).Msg("periodic cache cleanup failed")
	}
}

// Size returns the number of rows currently stored, expired but unvisited
// rows included.
func (f *File) Size(ctx context.Context) (int64, error) {
	count := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, f.cfg.table)
	var n int64
	if err := f.db.QueryRowContext(ctx, count).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", types.ErrStorage, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (f *File) Close() error {
	if err := f.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", types.ErrStorage, err)
	}
	return nil
}

// deleteRow is the lazy-eviction delete. Failures are logged, not returned:
// the read that found the stale row still answers with a clean miss.
func (f *File) deleteRow(ctx context.Context, hashed string) {
	del := fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, f.cfg.table)
	if _, err := f.db.ExecContext(ctx, del, hashed); err != nil {
		f.cfg.log.Warn().Err(err).Str("key", hashed).Msg("failed to remove expired cache entry")
	}
}
