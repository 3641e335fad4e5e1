package hydrate

import (
	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/sql/types"
)

// buildProps resolves one flat row into a property-name -> coerced-value
// map, honoring explicit ResultMappings first and then, when
// rm.AutoMapping is set (or rm is nil), auto-mapping any remaining
// columns by name (§4.4's auto-mapping fallback). exported controls
// whether auto-mapped names are capitalized for Go struct field lookup
// (object mode) or left as-is (array/map mode).
func buildProps(row Row, rm *configuration.ResultMap, mapUnderscore, exported bool, typeHandlers *types.Registry) map[string]any {
	props := map[string]any{}
	mapped := map[string]bool{}

	var mappings []configuration.ResultMapping
	auto := true
	if rm != nil {
		mappings = append(append([]configuration.ResultMapping{}, rm.IDMappings...), rm.ResultMappings...)
		auto = rm.AutoMapping || len(mappings) == 0
	}

	for _, m := range mappings {
		raw, present := row[m.Column]
		if !present {
			continue
		}
		mapped[m.Column] = true
		props[m.Property] = coerceColumn(raw, m.TypeName, typeHandlers)
	}

	if auto {
		for col, raw := range row {
			if mapped[col] {
				continue
			}
			name := propertyName(col, mapUnderscore, exported)
			if _, exists := props[name]; exists {
				continue
			}
			props[name] = coerceColumn(raw, "", typeHandlers)
		}
	}

	return props
}

func coerceColumn(raw any, typeName string, registry *types.Registry) any {
	if typeName == "" || registry == nil {
		return raw
	}
	handler, ok := registry.Lookup(typeName)
	if !ok {
		return raw
	}
	v, err := handler.Scan(raw)
	if err != nil {
		return raw
	}
	return v
}

// Array hydrates a flat row into a map[string]any (§4.4's array mode).
func Array(row Row, rm *configuration.ResultMap, mapUnderscore bool, typeHandlers *types.Registry) map[string]any {
	return buildProps(row, rm, mapUnderscore, false, typeHandlers)
}

// Object hydrates a flat row into an application value of typeName
// (§4.4's object mode): construct (via explicit Adapter, reflection
// fallback, or a bare map when typeName resolves to nothing), then
// assign every resolved property onto the result via setter preference.
func Object(row Row, rm *configuration.ResultMap, typeName string, mapUnderscore bool, typeHandlers *types.Registry, registry *Registry) (any, error) {
	props := buildProps(row, rm, mapUnderscore, true, typeHandlers)

	target, err := registry.construct(typeName, props)
	if err != nil {
		return nil, err
	}

	if target == nil {
		return props, nil
	}

	for property, value := range props {
		if err := Assign(target, property, value); err != nil {
			return nil, err
		}
	}

	return target, nil
}
