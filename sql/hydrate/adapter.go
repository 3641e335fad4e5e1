// Package hydrate implements the row-to-value hydration engine (§4.4):
// scalar, associative-array, and object modes; nested association/
// collection grouping; discriminator dispatch; and column auto-mapping.
package hydrate

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gosqlmapper/sqlmapper/errs"
)

// Row is one database row keyed by column name, as returned by the
// executor's fetch step.
type Row map[string]any

// Adapter is the "explicit constructor" escape hatch described in §9's
// design notes: a per-type pair of functions that replace reflection-based
// construction for application types that want it. Construct stands in
// for "the type has a non-empty constructor" in §4.4's object-mode
// priority list.
type Adapter struct {
	// Construct builds a new instance from the full property map
	// (property name -> already-type-converted value). Required.
	Construct func(props map[string]any) (any, error)
}

// Registry resolves a target type name (a ResultMap's typeName, or a
// statement's resultTypeName) to either an explicit Adapter or a plain Go
// type usable via reflection, per §4.4's construction-priority rule and
// §9's "generic path remains as a reflection-based fallback".
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]*Adapter
	goTypes  map[string]reflect.Type
}

// NewRegistry builds an empty type-adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]*Adapter{}, goTypes: map[string]reflect.Type{}}
}

// RegisterAdapter binds an explicit constructor adapter to a type name.
func (r *Registry) RegisterAdapter(typeName string, adapter *Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[typeName] = adapter
}

// RegisterGoType binds a type name to a concrete Go struct type (via a
// zero-value or pointer sample), enabling the reflection-based fallback
// construction path for result maps that don't need an explicit Adapter.
func (r *Registry) RegisterGoType(typeName string, sample any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.goTypes[typeName] = t
}

func (r *Registry) lookup(typeName string) (*Adapter, reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.adapters[typeName]; ok {
		return a, nil, true
	}
	if t, ok := r.goTypes[typeName]; ok {
		return nil, t, true
	}
	return nil, nil, false
}

// construct builds a new instance of typeName from props, per §4.4's
// priority: explicit Adapter first, then reflection-based struct
// construction, then (no type registered at all) a bare map fallback.
func (r *Registry) construct(typeName string, props map[string]any) (any, error) {
	if typeName == "" {
		return props, nil
	}
	adapter, goType, ok := r.lookup(typeName)
	if !ok {
		return props, nil
	}
	if adapter != nil {
		v, err := adapter.Construct(props)
		if err != nil {
			return nil, errs.HydrationError.New(err.Error())
		}
		return v, nil
	}
	instance := reflect.New(goType)
	return instance.Interface(), nil
}

// Assign writes value into the property named by property on target,
// using setter preference (a SetX(value) method) then direct exported
// field access, skipping fields tagged `sqlmapper:"readonly"`, matching
// §4.4's hydration assignment rule. target may also be a map[string]any,
// in which case assignment is a plain map write.
func Assign(target any, property string, value any) error {
	if m, ok := target.(map[string]any); ok {
		m[property] = value
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errs.HydrationError.New("hydration target must be a pointer to a struct")
	}

	exported := strings.ToUpper(property[:1]) + property[1:]
	setterName := "Set" + exported
	if setter := rv.MethodByName(setterName); setter.IsValid() && setter.Type().NumIn() == 1 {
		arg, err := coerceArg(value, setter.Type().In(0))
		if err != nil {
			return err
		}
		setter.Call([]reflect.Value{arg})
		return nil
	}

	elem := rv.Elem()
	field := elem.FieldByName(exported)
	if !field.IsValid() || !field.CanSet() {
		return nil // no matching exported, settable field: silently skip
	}
	if isReadOnly(elem.Type(), exported) {
		return nil
	}
	arg, err := coerceArg(value, field.Type())
	if err != nil {
		return err
	}
	field.Set(arg)
	return nil
}

func isReadOnly(t reflect.Type, fieldName string) bool {
	f, ok := t.FieldByName(fieldName)
	if !ok {
		return false
	}
	return f.Tag.Get("sqlmapper") == "readonly"
}

// coerceArg adapts value to the destination type where the conversion is
// safe (identical type, assignable, or a nil-admissible pointer target);
// mismatches fall back to the zero value of the destination type rather
// than failing the whole row, matching §4.4's scalar coercion posture.
func coerceArg(value any, destType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(destType), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(destType) {
		return rv, nil
	}
	// A constructed nested value is typically a pointer (Object always
	// returns one when it allocates via reflection); unwrap or wrap one
	// level of indirection so it lines up with the destination's shape.
	if rv.Kind() == reflect.Ptr && rv.Type().Elem().AssignableTo(destType) {
		return rv.Elem(), nil
	}
	if destType.Kind() == reflect.Ptr && rv.Type().AssignableTo(destType.Elem()) {
		ptr := reflect.New(destType.Elem())
		ptr.Elem().Set(rv)
		return ptr, nil
	}
	if rv.Type().ConvertibleTo(destType) {
		return rv.Convert(destType), nil
	}
	return reflect.Zero(destType), nil
}
