// Package collections holds small ordering-sensitive helpers shared across
// the engine.
package collections

import (
	"bytes"
	"encoding/json"
	"sort"
)

// DeterministicMap is a map[string]any that always marshals its keys in
// sorted order, so two maps with the same contents produce byte-identical
// JSON regardless of how they were built. The fingerprint canonicalization
// in internal/task relies on this.
type DeterministicMap map[string]any

// MarshalJSON implements json.Marshaler with keys sorted lexically.
func (m DeterministicMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortedKeys returns the map's keys in lexical order.
func (m DeterministicMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
