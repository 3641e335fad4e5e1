package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBooleanCoercion(t *testing.T) {
	h := &BooleanHandler{}
	for _, tc := range []struct {
		in   any
		want bool
	}{
		{"yes", true}, {"NO", false}, {"1", true}, {"0", false},
		{"on", true}, {"off", false}, {int64(5), true}, {int64(0), false},
	} {
		v, err := h.Bind(tc.in, "")
		require.NoError(t, err)
		require.Equal(t, tc.want, v, "input %v", tc.in)
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	h := &IntegerHandler{}
	bound, err := h.Bind(int64(42), "")
	require.NoError(t, err)
	scanned, err := h.Scan(bound)
	require.NoError(t, err)
	require.Equal(t, int64(42), scanned)
}

func TestJSONRoundTrip(t *testing.T) {
	h := &JSONHandler{}
	original := map[string]any{"a": float64(1), "b": []any{"x", "y"}}
	bound, err := h.Bind(original, "")
	require.NoError(t, err)
	scanned, err := h.Scan(bound)
	require.NoError(t, err)
	require.Equal(t, original, scanned)
}

func TestDateTimeRoundTrip(t *testing.T) {
	h := NewDateTimeHandler(DefaultDateTimeFormat)
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	bound, err := h.Bind(now, "")
	require.NoError(t, err)
	scanned, err := h.Scan(bound)
	require.NoError(t, err)
	require.True(t, now.Equal(scanned.(time.Time)))
}

func TestEnumRoundTrip(t *testing.T) {
	h := NewBackedStringEnumHandler(map[string]bool{"car": true, "truck": true})
	bound, err := h.Bind("car", "")
	require.NoError(t, err)
	scanned, err := h.Scan(bound)
	require.NoError(t, err)
	require.Equal(t, "car", scanned)

	_, err = h.Bind("spaceship", "")
	require.Error(t, err)
}

func TestLookupByValueFallsBackToUnknownString(t *testing.T) {
	r := NewRegistry()
	h := r.LookupByValue(struct{ X int }{})
	scanned, err := h.Scan("raw")
	require.NoError(t, err)
	require.Equal(t, "raw", scanned)
}

func TestLookupByNameCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	h1, ok := r.Lookup("Integer")
	require.True(t, ok)
	h2, ok := r.Lookup("INTEGER")
	require.True(t, ok)
	require.IsType(t, h1, h2)
}
