package types

import "errors"

// Errors shared by every engine.
//
// The split matters for callers: a serialization failure means the value (or
// key) cannot be represented and retrying will not help, while a storage
// failure means the backing store misbehaved and the value itself is fine.
var (
	// ErrSerialization wraps any failure to dump or load a value through the
	// configured codec. Surfaced from Set; a corrupted stored entry found
	// during Get degrades to a miss instead.
	ErrSerialization = errors.New("cached: serialization failed")

	// ErrStorage wraps failures of the backing store (locked database, bad
	// file, failed transaction). Always propagated, never swallowed.
	ErrStorage = errors.New("cached: storage failed")
)
