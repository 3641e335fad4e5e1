package expression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evalExpr(t *testing.T, src string, root any) any {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err)
	v, err := Evaluate(e, NewEnvironment(root))
	require.NoError(t, err)
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, int64(14), evalExpr(t, "2 + 3 * 4", nil))
	require.Equal(t, int64(20), evalExpr(t, "(2 + 3) * 4", nil))
}

func TestStringConcatOverload(t *testing.T) {
	require.Equal(t, "hi 3", evalExpr(t, "'hi ' + 3", nil))
}

func TestRelationalAndEquality(t *testing.T) {
	require.Equal(t, true, evalExpr(t, "3 > 2 && 1 == 1", nil))
	require.Equal(t, false, evalExpr(t, "1 === '1'", nil))
	require.Equal(t, true, evalExpr(t, "1 == '1'", nil))
}

func TestDottedIdentifier(t *testing.T) {
	root := map[string]any{"user": map[string]any{"address": map[string]any{"city": "NYC"}}}
	require.Equal(t, "NYC", evalExpr(t, "user.address.city", root))
}

func TestEvaluateBooleanOnMissingRootReturnsFalse(t *testing.T) {
	e, err := Parse("name")
	require.NoError(t, err)
	ok, err := EvaluateBoolean(e, NewEnvironment(map[string]any{}))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluateBooleanOnMissingNameInComparisonErrors(t *testing.T) {
	e, err := Parse("name != null")
	require.NoError(t, err)
	_, err = EvaluateBoolean(e, NewEnvironment(map[string]any{}))
	require.Error(t, err)
}

func TestZeroIsFalse(t *testing.T) {
	e, err := Parse("count")
	require.NoError(t, err)
	ok, err := EvaluateBoolean(e, NewEnvironment(map[string]any{"count": int64(0)}))
	require.NoError(t, err)
	require.False(t, ok)
}

type person struct {
	name string
}

func (p person) GetName() string { return p.name }

func TestGetterPreferredOverField(t *testing.T) {
	require.Equal(t, "Ada", evalExpr(t, "name", person{name: "Ada"}))
}
