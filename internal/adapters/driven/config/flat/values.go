// Package flat holds configuration as dotted keys ("remote.branch") and
// converts to and from the nested tables config files use.
package flat

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Values is a concurrency-safe set of dotted keys. Embedding it gives a
// driven.ConfigStore its typed getters; only persistence is left to the
// embedder.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// Get returns the raw value stored at key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

// Put stores value at key. A time.Duration is kept in its string form so it
// survives a TOML round trip.
func (v *Values) Put(key string, value any) {
	if d, ok := value.(time.Duration); ok {
		value = d.String()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.m == nil {
		v.m = make(map[string]any)
	}
	v.m[key] = value
}

// Replace swaps in a whole new set of keys.
func (v *Values) Replace(m map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m = m
}

// Nested returns the keys folded back into tables.
func (v *Values) Nested() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Nest(v.m)
}

func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt accepts the integer shapes TOML and JSON decoders produce.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (v *Values) GetBool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// GetDuration parses strings such as "30s". Unparsable values are 0.
func (v *Values) GetDuration(key string) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0
	}
	return d
}

// GetStringSlice returns the string items of a list, skipping the rest.
func (v *Values) GetStringSlice(key string) []string {
	val, _ := v.Get(key)
	switch list := val.(type) {
	case []string:
		return slices.Clone(list)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Flatten turns {"a": {"b": 1}} into {"a.b": 1}.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, nested map[string]any) {
	for k, val := range nested {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := val.(map[string]any); ok {
			flattenInto(out, k, table)
			continue
		}
		out[k] = val
	}
}

// Nest is the inverse of Flatten. When a key is both a value and a table
// prefix the table wins.
func Nest(flat map[string]any) map[string]any {
	// Deepest keys first, so tables exist before a scalar could take the name.
	keys := slices.SortedFunc(maps.Keys(flat), func(a, b string) int {
		if da, db := strings.Count(a, "."), strings.Count(b, "."); da != db {
			return db - da
		}
		return strings.Compare(a, b)
	})

	root := make(map[string]any)
	for _, key := range keys {
		path := strings.Split(key, ".")
		node := root
		for _, part := range path[:len(path)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		leaf := path[len(path)-1]
		if _, isTable := node[leaf].(map[string]any); !isTable {
			node[leaf] = flat[key]
		}
	}
	return root
}
