package hydrate

import (
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/sql/types"
)

// Scalar hydrates a single row into its first column's value, coerced
// through the type registry when a logical SQL type name is given.
// Matches §4.4's scalar mode: "the value of the row's sole or leading
// column, after type-handler coercion".
func Scalar(row Row, columnOrder []string, typeName string, registry *types.Registry) (any, error) {
	if len(columnOrder) == 0 {
		return nil, errs.HydrationError.New("scalar hydration requires at least one column")
	}
	raw := row[columnOrder[0]]
	if typeName == "" || registry == nil {
		return raw, nil
	}
	handler, ok := registry.Lookup(typeName)
	if !ok {
		return raw, nil
	}
	return handler.Scan(raw)
}
