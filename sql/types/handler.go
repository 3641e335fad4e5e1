// Package types implements the §4.5 type handler registry: per-logical
// type value marshaling between application values and the values that
// cross the `database/sql/driver` boundary.
package types

import (
	"reflect"
	"strings"
	"sync"
)

// Handler binds an application value for a prepared-statement parameter
// and reads a driver-returned column value back into its canonical Go
// representation.
type Handler interface {
	// Bind converts an application value into a value database/sql's
	// driver can carry (nil, int64, float64, bool, []byte, string, or
	// time.Time). sqlType is the optional authored `jdbcType`/`sqlType`
	// attribute, passed through for handlers that use it; the built-in
	// handlers ignore it.
	Bind(value any, sqlType string) (any, error)

	// Scan converts a value already read from a driver row (typically
	// int64, float64, []byte, string, bool, time.Time, or nil) into this
	// handler's canonical application value.
	Scan(raw any) (any, error)
}

// Registry is a case-insensitive lookup from logical type name to Handler,
// plus a by-runtime-value fallback used when no explicit type name was
// authored.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Handler
	byType  map[string]Handler
	byKind  map[reflect.Kind]Handler
	unknown Handler
}

// NewRegistry builds a Registry pre-populated with the built-in handlers
// of §4.5 (integer, float, string, boolean, JSON, date-time; enum handlers
// such as NewBackedStringEnumHandler are added via Register), falling back to the string handler for
// anything unrecognized.
func NewRegistry() *Registry {
	r := &Registry{
		byName: map[string]Handler{},
		byType: map[string]Handler{},
		byKind: map[reflect.Kind]Handler{},
	}
	str := &StringHandler{}
	r.unknown = str

	r.Register("integer", &IntegerHandler{})
	r.Register("int", &IntegerHandler{})
	r.Register("float", &FloatHandler{})
	r.Register("double", &FloatHandler{})
	r.Register("string", str)
	r.Register("boolean", &BooleanHandler{})
	r.Register("bool", &BooleanHandler{})
	r.Register("json", &JSONHandler{})
	r.Register("datetime", NewDateTimeHandler(DefaultDateTimeFormat))
	r.Register("date", NewDateTimeHandler(DefaultDateFormat))

	r.byKind[reflect.Int] = &IntegerHandler{}
	r.byKind[reflect.Int64] = &IntegerHandler{}
	r.byKind[reflect.Float64] = &FloatHandler{}
	r.byKind[reflect.Float32] = &FloatHandler{}
	r.byKind[reflect.String] = str
	r.byKind[reflect.Bool] = &BooleanHandler{}

	return r
}

// Register adds or replaces the handler for name (case-insensitive).
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[strings.ToLower(name)] = h
}

// Lookup resolves a handler by its registered logical name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[strings.ToLower(name)]
	return h, ok
}

// LookupByValue resolves a handler for a runtime value when no explicit
// type name was authored: class identity first (a handler registered
// under the value's concrete Go type), then primitive kind, then the
// unknown (string) fallback.
func (r *Registry) LookupByValue(v any) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v == nil {
		return r.unknown
	}
	if h, ok := r.byType[reflect.TypeOf(v).String()]; ok {
		return h
	}
	if h, ok := r.byKind[reflect.ValueOf(v).Kind()]; ok {
		return h
	}
	return r.unknown
}

// RegisterForGoType registers h under the exact Go type of sample,
// implementing the "class identity" tier of LookupByValue — subclasses
// (in Go terms, other types sharing the same underlying kind) fall back to
// the primitive-kind tier instead.
func (r *Registry) RegisterForGoType(sample any, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[reflect.TypeOf(sample).String()] = h
}
