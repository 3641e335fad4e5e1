package types

import "github.com/gosqlmapper/sqlmapper/errs"

// EnumHandler binds/scans enum-like Go values through caller-supplied
// conversion functions, covering both §4.5 enum variants:
//
//   - "backed" enums round-trip through their backing scalar (e.g. an int
//     constant or a string constant with a stable wire value) — ToBacking
//     returns that scalar, FromBacking reconstructs the enum from it.
//   - "unbacked" enums round-trip through their case name — the same two
//     functions, just operating on the case's name string instead of a
//     separate backing value.
//
// Invalid raw values produce HydrationError, matching §7.
type EnumHandler struct {
	// ToBacking converts an enum value to its storable scalar.
	ToBacking func(value any) (any, error)
	// FromBacking reconstructs the enum value from a storable scalar.
	FromBacking func(raw any) (any, error)
}

func (h *EnumHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	v, err := h.ToBacking(value)
	if err != nil {
		return nil, errs.HydrationError.New(err.Error())
	}
	return v, nil
}

func (h *EnumHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := h.FromBacking(raw)
	if err != nil {
		return nil, errs.HydrationError.New(err.Error())
	}
	return v, nil
}

// NewBackedStringEnumHandler builds an EnumHandler for a string-backed
// enum given the set of valid values.
func NewBackedStringEnumHandler(valid map[string]bool) *EnumHandler {
	return &EnumHandler{
		ToBacking: func(value any) (any, error) {
			s, ok := value.(string)
			if !ok || !valid[s] {
				return nil, errs.HydrationError.New("invalid enum value")
			}
			return s, nil
		},
		FromBacking: func(raw any) (any, error) {
			s, ok := raw.(string)
			if !ok || !valid[s] {
				return nil, errs.HydrationError.New("invalid enum value")
			}
			return s, nil
		},
	}
}
