package types

import "time"

/*
Entry is one cached value together with its lifetime.

ExpiresAt is always an absolute instant (write time + ttl), never a duration.
Storing the precomputed instant keeps reads cheap: an expiry check is a single
comparison and does not depend on when the entry was written.
*/
type Entry struct {
	// Key is the canonical storage key, already resolved by the engine.
	Key string

	// Value holds the cached data, exactly as the caller handed it over.
	Value any

	// CreatedAt is when the entry was written.
	CreatedAt time.Time

	// ExpiresAt is when the entry stops being served. An entry written with a
	// non-positive ttl is expired from the start.
	ExpiresAt time.Time
}

// Expired reports whether the entry should no longer be served at the given
// instant. The boundary itself counts as expired.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
