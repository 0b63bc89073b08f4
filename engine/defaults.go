package engine

import "sync"

// Process-wide default instances, for callers who want one shared cache per
// engine kind without threading it through every call site. The first caller
// constructs the instance; everyone after that gets the same one. Prefer
// explicit construction and injection when you can.
var (
	defaultMemory = sync.OnceValue(func() *Memory {
		return NewMemory()
	})

	defaultFile = sync.OnceValues(func() (*File, error) {
		return NewFile("")
	})
)

// DefaultMemory returns the shared memory engine, constructing it with
// default options on first call.
func DefaultMemory() *Memory { return defaultMemory() }

// DefaultFile returns the shared file engine at DefaultPath, opening it on
// first call. The open error, if any, is returned to every caller.
func DefaultFile() (*File, error) { return defaultFile() }
