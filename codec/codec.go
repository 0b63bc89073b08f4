// Package codec provides the pluggable serialization used by cache engines.
//
// A Codec is a unit of three things: how values are dumped to bytes, how
// bytes are loaded back, and how key material is digested into a canonical
// hex string. They are deliberately one interface rather than three: a key
// hashed under one serialization format does not address an entry written
// under another, so swapping the format must swap the key derivation with it.
package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/krisalay/cached/types"
)

/*
Codec converts values to and from their stored representation and derives
canonical keys.

Round-trip contract: Unmarshal(Marshal(v)) yields v for every supported value.
Supported means representable in the underlying format; a value the format
cannot express (a channel, a function) fails with types.ErrSerialization
rather than being silently coerced.
*/
type Codec interface {

	// Marshal dumps a value to its stored byte form.
	Marshal(v any) ([]byte, error)

	// Unmarshal loads stored bytes into dst, which must be a pointer.
	Unmarshal(data []byte, dst any) error

	// HashKey digests arbitrary key material into a fixed-length hex string.
	// Deterministic: equal material always produces equal digests.
	HashKey(v any) (string, error)
}

// Convert re-encodes src into dst through the codec. It is how a value read
// back in generic form (maps, slices, int64s) is turned into the caller's
// concrete type.
func Convert(c Codec, src, dst any) error {
	data, err := c.Marshal(src)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, dst)
}

// hashBytes is the digest shared by the provided codecs: sha256, hex encoded.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func serializationErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrSerialization, op, err)
}
