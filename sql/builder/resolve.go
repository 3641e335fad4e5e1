package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosqlmapper/sqlmapper/sql/expression"
)

var (
	substitutionPattern = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}`)
	parameterPattern    = regexp.MustCompile(`#\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*(,([^}]*))?\}`)
)

// Resolve runs the §4.3 two-phase rewrite over template:
//
//  1. every `${name}` is replaced with the string form of the resolved
//     property value (dotted-path resolution against env); missing values
//     substitute the empty string. This is an injection hazard by design —
//     `${...}` is reserved for cases like table/column identifiers where a
//     bound parameter placeholder can't appear — callers own that risk.
//  2. every `#{property[, attr=val ...]}` becomes `?` plus a
//     ParameterMapping recording the property and any attributes.
//
// additionalParameters (bind/foreach output) is carried onto the returned
// BoundSql unchanged.
func Resolve(template string, env *expression.Environment, additionalParameters map[string]any) (*BoundSql, error) {
	phase1 := substitutionPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := substitutionPattern.FindStringSubmatch(match)[1]
		v, ok := env.Resolve(name)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	})

	var mappings []ParameterMapping
	phase2 := parameterPattern.ReplaceAllStringFunc(phase1, func(match string) string {
		sub := parameterPattern.FindStringSubmatch(match)
		mappings = append(mappings, parseMapping(sub[1], sub[3]))
		return "?"
	})

	return &BoundSql{
		SQL:                  phase2,
		ParameterMappings:    mappings,
		AdditionalParameters: additionalParameters,
	}, nil
}

// parseMapping parses the comma-separated `attr=value` list following a
// property name inside `#{...}`.
func parseMapping(property, attrs string) ParameterMapping {
	m := ParameterMapping{Property: property}
	for _, kv := range strings.Split(attrs, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch strings.ToLower(key) {
		case "phptype", "javatype", "type":
			m.TypeName = val
		case "jdbctype", "sqltype":
			m.SqlType = val
		case "typehandler":
			m.TypeHandlerName = val
		case "mode":
			switch strings.ToUpper(val) {
			case "OUT":
				m.Mode = ModeOut
			case "INOUT":
				m.Mode = ModeInOut
			default:
				m.Mode = ModeIn
			}
		}
	}
	return m
}
