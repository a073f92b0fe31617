package engine

import "strings"

// Context supplies runtime values to the evaluator. The engine imposes no
// schema beyond path resolvability; implementations report ok=false for any
// path they cannot resolve (which the evaluator treats as a non-match,
// never an error).
type Context interface {
	Resolve(path string) (any, bool)
}

// MapContext is the standard Context over an arbitrary nested object, keyed
// to match catalog paths (e.g. {"order": {"status": "PENDING"}}). It is the
// shape the external trigger hands in as JSON.
type MapContext map[string]any

// Resolve follows a dotted path through nested maps. A missing intermediate
// object or key resolves to (nil, false).
func (c MapContext) Resolve(path string) (any, bool) {
	if c == nil || path == "" {
		return nil, false
	}

	var current any = map[string]any(c)
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set writes a value at a dotted path, creating intermediate objects as
// needed. Used by field-mutating action handlers so later actions observe
// the state left by earlier ones.
func (c MapContext) Set(path string, value any) {
	if c == nil || path == "" {
		return
	}

	segments := strings.Split(path, ".")
	current := map[string]any(c)
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
