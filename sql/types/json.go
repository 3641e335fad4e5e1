package types

import "encoding/json"

// JSONHandler binds Go maps/slices/structs by encoding them as a JSON
// string, and scans a JSON column (string or []byte) back into an
// associative structure (map[string]any / []any), satisfying the §8
// round-trip property decode∘encode = id over nested associative
// structures.
type JSONHandler struct{}

func (JSONHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (JSONHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return raw, nil
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
