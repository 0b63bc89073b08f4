// Package keys defines how cache keys are identified and canonicalized.
//
// A cache engine never stores the caller's key directly. It stores a canonical
// string derived from it, so that arbitrary values (structs, slices, argument
// tuples) can address entries, and so that two logically distinct keys sharing
// a raw value but different identifiers never collide.
package keys

import "fmt"

/*
Hasher turns an arbitrary value into a fixed-form hex digest.

The codec package provides the default implementation (sha256 over the codec's
serialized form). The serializer and the hash function travel together: swapping
the serialization format swaps the key derivation with it.
*/
type Hasher interface {
	HashKey(v any) (string, error)
}

/*
Key is the identity of a cache entry.

It is a tagged union with two variants:

  - Raw: an arbitrary value. The engine serializes and hashes it to obtain
    the storage key. This is the common case.
  - Hashed: a string the caller has already canonicalized. It is used verbatim,
    and the caller takes responsibility for its uniqueness.

Either variant may carry an identifier, a namespace string that scopes the key
so that equal raw values under different identifiers address different entries.
*/
type Key struct {
	raw    any
	hashed string
	id     string

	isHashed bool
}

// Raw builds a key from an arbitrary value.
func Raw(v any) Key {
	return Key{raw: v}
}

// Hashed builds a key from a pre-canonicalized string. No hashing is applied.
func Hashed(s string) Key {
	return Key{hashed: s, isHashed: true}
}

// WithIdentifier returns a copy of the key scoped by the given identifier.
func (k Key) WithIdentifier(id string) Key {
	k.id = id
	return k
}

// Identifier reports the identifier the key is scoped by, if any.
func (k Key) Identifier() string { return k.id }

// IsHashed reports whether the key is the pre-hashed variant.
func (k Key) IsHashed() bool { return k.isHashed }

// Value returns the raw value for a Raw key. It is nil for Hashed keys.
func (k Key) Value() any { return k.raw }

/*
Resolve computes the canonical storage key.

For a Raw key the value is hashed through h; a non-empty identifier is hashed
together with the value, so identifiers change the digest rather than being
visible in the result. For a Hashed key the string is used as-is, with the
identifier prepended when present.

The optional namespace scopes the final key with a plain prefix. It is an
engine-level setting (one namespace per engine instance), whereas the
identifier is a per-key setting.

Resolve is deterministic: the same (key, identifier, namespace) under the same
Hasher always yields the same result, independent of process or call order.
*/
func (k Key) Resolve(namespace string, h Hasher) (string, error) {
	var s string
	if k.isHashed {
		s = k.hashed
		if k.id != "" {
			s = k.id + "." + s
		}
	} else {
		var material any = k.raw
		if k.id != "" {
			material = []any{k.raw, k.id}
		}
		var err error
		s, err = h.HashKey(material)
		if err != nil {
			return "", fmt.Errorf("resolve key: %w", err)
		}
	}
	if namespace != "" {
		s = namespace + "." + s
	}
	return s, nil
}
