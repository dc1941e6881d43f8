package negotiator

import (
	"encoding/json"
	"strings"
)

// selector is a parsed only/except key list. Whole holds top-level keys
// named entirely; nested holds dotted paths below a top-level key.
type selector struct {
	whole  map[string]bool
	nested map[string][][]string
}

func newSelector(keys []string) selector {
	paths := make([][]string, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, strings.Split(k, "."))
	}
	whole, nested := splitPaths(paths)
	return selector{whole: whole, nested: nested}
}

// names reports whether key is named at all, entirely or by a nested path.
func (s selector) names(key string) bool {
	if s.whole[key] {
		return true
	}
	_, ok := s.nested[key]
	return ok
}

// pick keeps only the listed nested paths of v. Values that are not
// objects yield ok=false, since a nested path cannot match them.
func pick(v any, paths [][]string) (any, bool) {
	m, ok := asObject(v)
	if !ok {
		return nil, false
	}
	whole, nested := splitPaths(paths)
	out := make(map[string]any)
	for k := range whole {
		if child, exists := m[k]; exists {
			out[k] = child
		}
	}
	for k, subs := range nested {
		if whole[k] {
			continue
		}
		child, exists := m[k]
		if !exists {
			continue
		}
		if sub, ok := pick(child, subs); ok {
			out[k] = sub
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// drop removes the listed nested paths from v without modifying v.
func drop(v any, paths [][]string) any {
	m, ok := asObject(v)
	if !ok {
		return v
	}
	whole, nested := splitPaths(paths)
	out := make(map[string]any, len(m))
	for k, val := range m {
		if whole[k] {
			continue
		}
		if subs, ok := nested[k]; ok {
			val = drop(val, subs)
		}
		out[k] = val
	}
	return out
}

func splitPaths(paths [][]string) (map[string]bool, map[string][][]string) {
	whole := make(map[string]bool)
	nested := make(map[string][][]string)
	for _, path := range paths {
		if len(path) == 0 || path[0] == "" {
			continue
		}
		if len(path) == 1 {
			whole[path[0]] = true
			continue
		}
		nested[path[0]] = append(nested[path[0]], path[1:])
	}
	return whole, nested
}

// asObject views v as a JSON object. Maps with string keys are used
// directly; other values go through their JSON encoding.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil, string, bool, int, int64, float64, []any:
		return nil, false
	}
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}
