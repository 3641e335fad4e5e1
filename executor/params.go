// Package executor implements the three executor strategies of §4.6:
// Simple, Reuse, and Batch, sharing parameter extraction, parameter
// binding, result hydration, generated-key writeback, and query
// telemetry.
package executor

import (
	"reflect"
	"strings"

	"github.com/gosqlmapper/sqlmapper/sql/expression"
)

// ExtractParameters builds the flat property bag an executor binds
// ParameterMappings against (§4.6): a map parameter is used directly;
// an object's public attribute values are aggregated with the return
// values of its zero-arg GetX/IsX methods under lower-camel names,
// attributes winning on collision.
func ExtractParameters(param any) map[string]any {
	result := map[string]any{}
	if param == nil {
		return result
	}
	if m, ok := param.(map[string]any); ok {
		for k, v := range m {
			result[k] = v
		}
		return result
	}

	pv := reflect.ValueOf(param)
	collectGetters(pv, result)

	rv := pv
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return result
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return result
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		result[lowerFirst(f.Name)] = rv.Field(i).Interface()
	}
	return result
}

func collectGetters(pv reflect.Value, into map[string]any) {
	if !pv.IsValid() {
		return
	}
	t := pv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		var property string
		switch {
		case strings.HasPrefix(m.Name, "Get") && len(m.Name) > 3:
			property = lowerFirst(m.Name[3:])
		case strings.HasPrefix(m.Name, "Is") && len(m.Name) > 2:
			property = lowerFirst(m.Name[2:])
		default:
			continue
		}
		fn := pv.Method(i)
		if fn.Type().NumIn() != 0 || fn.Type().NumOut() == 0 {
			continue
		}
		out := fn.Call(nil)
		into[property] = out[0].Interface()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// ResolveParameter resolves a dotted path against param using the same
// precedence rules as §4.1 (map lookup, then getter preference, then
// direct attribute access).
func ResolveParameter(param any, path string) (any, bool) {
	return expression.NewEnvironment(param).Resolve(path)
}
