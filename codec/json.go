package codec

import "encoding/json"

/*
JSON is a text-format codec for callers who want the stored blobs to be
human-readable, at the cost of a smaller supported value set (no []byte
round-trip fidelity, numbers load as float64 when untyped).

Because it is a full Codec, choosing JSON also changes key derivation: keys
are sha256 over the JSON form, so JSON and Msgpack engines never address each
other's entries even on the same backing store.
*/
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, serializationErr("json dump", err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return serializationErr("json load", err)
	}
	return nil
}

func (j JSON) HashKey(v any) (string, error) {
	data, err := j.Marshal(v)
	if err != nil {
		return "", err
	}
	return hashBytes(data), nil
}
