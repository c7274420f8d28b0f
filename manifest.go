package rdmc

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Manifest is the raw research data container manifest as supplied by the
// client. Manifests come from different producers and vary in which keys
// they carry, so every accessor is permissive: a missing key or a value of
// an unexpected shape yields an absent result, never an error.
type Manifest map[string]any

// Text returns the first of keys that holds a non-empty string. An empty
// string counts as absent, so downstream columns store NULL instead of ""
// and fallback chains keep searching.
func (m Manifest) Text(keys ...string) *string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// Object returns the nested object under key, or an empty Manifest.
func (m Manifest) Object(key string) Manifest {
	if obj, ok := m[key].(map[string]any); ok {
		return Manifest(obj)
	}
	return Manifest{}
}

// List returns the array under key, or nil.
func (m Manifest) List(key string) []any {
	if list, ok := m[key].([]any); ok {
		return list
	}
	return nil
}

// Hash returns a hex-encoded xxh3 digest of the marshaled manifest.
// Map keys marshal in sorted order, so the digest is stable across
// re-ingestions of the same document.
func (m Manifest) Hash() string {
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
