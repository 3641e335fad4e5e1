// Package expression implements the small JavaScript/OGNL-ish expression
// language used by dynamic SQL's `if`, `choose/when`, and `bind` nodes.
package expression

import (
	"reflect"
	"strings"
)

// Environment is the flat bag of named values an expression evaluates
// against: the caller's parameter (map or object attributes) merged with
// explicit bindings contributed by `bind` and `foreach`, with bindings
// taking precedence on name collision.
type Environment struct {
	// Bindings holds explicit bindings (from bind/foreach). Checked first.
	Bindings map[string]any
	// Root is the top-level parameter: a map[string]any, a struct, or a
	// pointer to a struct. May be nil.
	Root any
}

// NewEnvironment builds an Environment with an empty binding set.
func NewEnvironment(root any) *Environment {
	return &Environment{Bindings: map[string]any{}, Root: root}
}

// Bind records an explicit binding, overwriting any previous value under
// the same name. Used by the `bind` and `foreach` dynamic SQL nodes.
func (e *Environment) Bind(name string, value any) {
	if e.Bindings == nil {
		e.Bindings = map[string]any{}
	}
	e.Bindings[name] = value
}

// Resolve resolves a dotted path against bindings first, then the root
// parameter. The bool result reports whether every segment of the path
// was found (false means some segment is missing, which callers use to
// tell "key absent" apart from "key present with value nil"); a nil value
// part-way along the path counts as missing.
func (e *Environment) Resolve(path string) (any, bool) {
	segments := strings.Split(path, ".")
	if v, ok := e.Bindings[segments[0]]; ok {
		return resolveRemaining(v, segments[1:])
	}
	return resolveRoot(e.Root, segments)
}

func resolveRoot(root any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return root, true
	}
	head := segments[0]
	switch r := root.(type) {
	case map[string]any:
		v, ok := r[head]
		if !ok {
			return nil, false
		}
		return resolveRemaining(v, segments[1:])
	case nil:
		return nil, false
	default:
		v, ok := resolveAttribute(root, head)
		if !ok {
			return nil, false
		}
		return resolveRemaining(v, segments[1:])
	}
}

func resolveRemaining(v any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return v, true
	}
	return resolveRoot(v, segments)
}

// resolveAttribute resolves one path segment against a Go value via map
// lookup, getter preference (GetX, then IsX), then direct exported field
// access, mirroring §4.1's "getter preferred, then is-getter, then direct
// attribute" rule.
func resolveAttribute(obj any, name string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	exported := strings.ToUpper(name[:1]) + name[1:]

	if m, ok := obj.(map[string]any); ok {
		v, ok := m[name]
		return v, ok
	}

	rt := rv.Type()
	if rt.Kind() == reflect.Struct {
		if getter := findMethod(reflect.ValueOf(obj), "Get"+exported); getter.IsValid() {
			out := getter.Call(nil)
			if len(out) > 0 {
				return out[0].Interface(), true
			}
		}
		if getter := findMethod(reflect.ValueOf(obj), "Is"+exported); getter.IsValid() {
			out := getter.Call(nil)
			if len(out) > 0 {
				return out[0].Interface(), true
			}
		}
		if field := rv.FieldByName(exported); field.IsValid() && field.CanInterface() {
			return field.Interface(), true
		}
	}
	return nil, false
}

func findMethod(v reflect.Value, name string) reflect.Value {
	m := v.MethodByName(name)
	if m.IsValid() && m.Type().NumIn() == 0 {
		return m
	}
	return reflect.Value{}
}
