package types

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// IntegerHandler binds/scans Go int64 values. Non-numeric input for a
// numeric target yields zero, matching §4.4's scalar coercion rule.
type IntegerHandler struct{}

func (IntegerHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	return cast.ToInt64(value), nil
}

func (IntegerHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return cast.ToInt64(raw), nil
}

// FloatHandler binds/scans Go float64 values.
type FloatHandler struct{}

func (FloatHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	return cast.ToFloat64(value), nil
}

func (FloatHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return cast.ToFloat64(raw), nil
}

// StringHandler binds/scans Go string values; it is also the registry's
// fallback for unrecognized types, preserving raw input as far as
// reasonably possible.
type StringHandler struct{}

func (StringHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		return string(b), nil
	}
	return cast.ToString(value), nil
}

func (StringHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := raw.([]byte); ok {
		return string(b), nil
	}
	return cast.ToString(raw), nil
}

// BooleanHandler binds/scans Go bool values. Coercion follows §4.4:
// "true|false|yes|no|on|off|t|y|1|0" (case-insensitive) from strings, and
// any non-zero number as true.
type BooleanHandler struct{}

var truthyWords = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true,
}
var falsyWords = map[string]bool{
	"false": true, "f": true, "no": true, "n": true, "off": true, "0": true,
}

func (BooleanHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	return coerceBool(value), nil
}

func (BooleanHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return coerceBool(raw), nil
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		if truthyWords[lower] {
			return true
		}
		if falsyWords[lower] {
			return false
		}
		if n, err := strconv.ParseFloat(lower, 64); err == nil {
			return n != 0
		}
		return false
	case []byte:
		return coerceBool(string(v))
	default:
		if n, ok := numericValue(v); ok {
			return n != 0
		}
		return false
	}
}

func numericValue(v any) (float64, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}
