// Package driver adapts between this engine's canonical application
// values and the value shapes that cross the `database/sql`/
// `database/sql/driver` boundary: binding parameters out, and reading
// result rows and exec results back in.
package driver

import (
	"database/sql/driver"
	"fmt"
	"reflect"
)

// ErrUnsupportedValue is returned when a bound parameter can't be
// expressed as a database/sql/driver.Value.
var ErrUnsupportedValue = fmt.Errorf("unsupported parameter value")

// ToDriverValue narrows a type handler's Bind output (§4.5: nil, int64,
// float64, bool, []byte, string, or time.Time) down to a value
// database/sql accepts directly as a query argument, converting the
// nearby numeric/string kinds a handler might legitimately produce.
func ToDriverValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if driver.IsValue(v) {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}
