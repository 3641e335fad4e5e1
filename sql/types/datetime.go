package types

import (
	"time"

	"github.com/spf13/cast"
)

const (
	DefaultDateTimeFormat = "2006-01-02 15:04:05"
	DefaultDateFormat     = "2006-01-02"
)

// DateTimeHandler binds/scans time.Time values using a configurable
// textual format. §4.5 distinguishes "immutable and mutable variants" of
// the date-time handler; time.Time is a value type in Go, so the
// "immutable" variant is DateTimeHandler itself and the "mutable" variant
// is MutableDateTimeHandler, which binds/scans *time.Time so callers can
// observe in-place updates through a shared pointer.
type DateTimeHandler struct {
	Format string
}

func NewDateTimeHandler(format string) *DateTimeHandler {
	return &DateTimeHandler{Format: format}
}

func (h *DateTimeHandler) Bind(value any, _ string) (any, error) {
	if value == nil {
		return nil, nil
	}
	t, err := h.toTime(value)
	if err != nil {
		return nil, err
	}
	return t.Format(h.Format), nil
}

func (h *DateTimeHandler) Scan(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return h.toTime(raw)
}

func (h *DateTimeHandler) toTime(value any) (time.Time, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(h.Format, s)
}

// MutableDateTimeHandler is the *time.Time-typed sibling of
// DateTimeHandler — see its doc comment.
type MutableDateTimeHandler struct {
	Inner *DateTimeHandler
}

func NewMutableDateTimeHandler(format string) *MutableDateTimeHandler {
	return &MutableDateTimeHandler{Inner: NewDateTimeHandler(format)}
}

func (h *MutableDateTimeHandler) Bind(value any, sqlType string) (any, error) {
	if p, ok := value.(*time.Time); ok {
		if p == nil {
			return nil, nil
		}
		return h.Inner.Bind(*p, sqlType)
	}
	return h.Inner.Bind(value, sqlType)
}

func (h *MutableDateTimeHandler) Scan(raw any) (any, error) {
	t, err := h.Inner.Scan(raw)
	if err != nil || t == nil {
		return nil, err
	}
	tv := t.(time.Time)
	return &tv, nil
}
