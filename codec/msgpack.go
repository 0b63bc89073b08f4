package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

/*
Msgpack is the default codec: a general-purpose binary object serializer.

Most Go values work out of the box (strings, numbers, bools, slices, maps,
structs, time.Time). When loading into an untyped destination, integers come
back as int64 and maps as map[string]any; Convert turns those into concrete
types when the caller knows them.
*/
type Msgpack struct{}

func (Msgpack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	// Map iteration order is random in Go; sorting keys keeps the encoding,
	// and therefore the derived cache key, deterministic.
	enc.SetSortMapKeys(true)

	if err := enc.Encode(v); err != nil {
		return nil, serializationErr("msgpack dump", err)
	}
	return buf.Bytes(), nil
}

func (Msgpack) Unmarshal(data []byte, dst any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	// Loose decoding collapses sized integers into int64 so that values
	// round-tripped through storage compare predictably.
	dec.UseLooseInterfaceDecoding(true)

	if err := dec.Decode(dst); err != nil {
		return serializationErr("msgpack load", err)
	}
	return nil
}

func (m Msgpack) HashKey(v any) (string, error) {
	data, err := m.Marshal(v)
	if err != nil {
		return "", err
	}
	return hashBytes(data), nil
}
