package executor

import (
	"fmt"
	"strings"

	"github.com/gosqlmapper/sqlmapper/driver"
	"github.com/gosqlmapper/sqlmapper/sql/builder"
	"github.com/gosqlmapper/sqlmapper/sql/expression"
	"github.com/gosqlmapper/sqlmapper/sql/types"
)

// bindArgs resolves every ParameterMapping in bound, in order, against
// the extracted caller parameters plus bound.AdditionalParameters
// (contributed by `foreach`/`bind`), delegates each to the matching type
// handler's Bind, and narrows the result to a database/sql-safe value
// (§4.6).
func bindArgs(bound *builder.BoundSql, param any, registry *types.Registry) ([]any, error) {
	env := expression.NewEnvironment(param)
	for name, value := range bound.AdditionalParameters {
		env.Bind(name, value)
	}

	args := make([]any, 0, len(bound.ParameterMappings))
	for _, mapping := range bound.ParameterMappings {
		raw, found := env.Resolve(mapping.Property)
		if !found && strings.Contains(mapping.Property, ".") {
			return nil, fmt.Errorf("binding parameter %q: no value found along property path", mapping.Property)
		}

		handler := resolveHandler(mapping, raw, registry)
		boundValue, err := handler.Bind(raw, mapping.SqlType)
		if err != nil {
			return nil, fmt.Errorf("binding parameter %q: %w", mapping.Property, err)
		}
		driverValue, err := driver.ToDriverValue(boundValue)
		if err != nil {
			return nil, fmt.Errorf("binding parameter %q: %w", mapping.Property, err)
		}
		args = append(args, driverValue)
	}
	return args, nil
}

func resolveHandler(mapping builder.ParameterMapping, value any, registry *types.Registry) types.Handler {
	if mapping.TypeHandlerName != "" {
		if h, ok := registry.Lookup(mapping.TypeHandlerName); ok {
			return h
		}
	}
	if mapping.TypeName != "" {
		if h, ok := registry.Lookup(mapping.TypeName); ok {
			return h
		}
	}
	return registry.LookupByValue(value)
}
