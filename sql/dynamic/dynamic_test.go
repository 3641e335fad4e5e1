package dynamic

import (
	"testing"

	"github.com/gosqlmapper/sqlmapper/sql/expression"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) expression.Expr {
	t.Helper()
	e, err := expression.Parse(src)
	require.NoError(t, err)
	return e
}

// TestDynamicWhereWithForeach reproduces §8 scenario 1.
func TestDynamicWhereWithForeach(t *testing.T) {
	tree := &Where{Inner: &Mixed{Children: []SqlNode{
		&If{Test: mustParse(t, "name != null"), Inner: &Text{Literal: "AND name = #{name}"}},
		&If{Test: mustParse(t, "ids != null"), Inner: &Mixed{Children: []SqlNode{
			&Text{Literal: "AND id IN"},
			&Foreach{
				Collection: mustParse(t, "ids"),
				ItemName:   "id",
				Open:       "(", Close: ")", Separator: ",",
				Inner: &Text{Literal: "#{id}"},
			},
		}}},
	}}}

	ctx := NewDynamicContext(map[string]any{
		"name": "John",
		"ids":  []any{int64(1), int64(2), int64(3)},
	})
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	require.True(t, contributed)
	require.Equal(t, "WHERE name = #{name} AND id IN (#{__frch_id_0},#{__frch_id_1},#{__frch_id_2})", ctx.SQL())
	require.Equal(t, int64(1), ctx.Bindings()["__frch_id_0"])
	require.Equal(t, int64(2), ctx.Bindings()["__frch_id_1"])
	require.Equal(t, int64(3), ctx.Bindings()["__frch_id_2"])
}

// TestForeachRewritesDottedPropertyPlaceholders covers the common
// MyBatis idiom of iterating a list of objects/maps and referencing
// per-item properties inside the loop body.
func TestForeachRewritesDottedPropertyPlaceholders(t *testing.T) {
	tree := &Foreach{
		Collection: mustParse(t, "users"),
		ItemName:   "user",
		Open:       "", Close: "", Separator: ",",
		Inner: &Text{Literal: "(#{user.name}, #{user.age})"},
	}
	ctx := NewDynamicContext(map[string]any{
		"users": []any{
			map[string]any{"name": "Ada", "age": int64(30)},
			map[string]any{"name": "Bob", "age": int64(40)},
		},
	})
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	require.True(t, contributed)
	require.Equal(t, "(#{__frch_user_0.name}, #{__frch_user_0.age}),(#{__frch_user_1.name}, #{__frch_user_1.age})", ctx.SQL())
	require.Equal(t, map[string]any{"name": "Ada", "age": int64(30)}, ctx.Bindings()["__frch_user_0"])
	require.Equal(t, map[string]any{"name": "Bob", "age": int64(40)}, ctx.Bindings()["__frch_user_1"])
}

func TestForeachEmptyCollectionAbstains(t *testing.T) {
	tree := &Foreach{Collection: mustParse(t, "ids"), ItemName: "id", Open: "(", Close: ")", Separator: ",", Inner: &Text{Literal: "#{id}"}}
	ctx := NewDynamicContext(map[string]any{"ids": []any{}})
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	require.False(t, contributed)
	require.Equal(t, "", ctx.SQL())
}

func TestWhereAllBranchesFalseEmitsNothing(t *testing.T) {
	tree := &Where{Inner: &If{Test: mustParse(t, "flag"), Inner: &Text{Literal: "AND x = 1"}}}
	ctx := NewDynamicContext(map[string]any{"flag": false})
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	require.False(t, contributed)
	require.Equal(t, "", ctx.SQL())
}

func TestTrimFirstPrefixOverride(t *testing.T) {
	trim := &Trim{Inner: &Text{Literal: "AND id=1"}, Prefix: "WHERE ", PrefixOverrides: []string{"AND ", "OR "}}
	ctx := NewDynamicContext(nil)
	_, err := trim.Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, "WHERE id=1", ctx.SQL())
}

func TestTrimStripsOnlyFirstMatchingPrefix(t *testing.T) {
	trim := &Trim{Inner: &Text{Literal: "AND AND x"}, Prefix: "", PrefixOverrides: []string{"AND ", "OR "}}
	ctx := NewDynamicContext(nil)
	_, err := trim.Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, "AND x", ctx.SQL())
}

func TestSetStripsTrailingComma(t *testing.T) {
	set := &Set{Inner: &Mixed{Children: []SqlNode{
		&Text{Literal: "name = #{name},"},
	}}}
	ctx := NewDynamicContext(nil)
	_, err := set.Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, "SET name = #{name}", ctx.SQL())
}

func TestChooseOtherwise(t *testing.T) {
	choose := &Choose{
		Whens: []*If{
			{Test: mustParse(t, "false_flag"), Inner: &Text{Literal: "ONE"}},
		},
		Otherwise: &Text{Literal: "TWO"},
	}
	ctx := NewDynamicContext(map[string]any{"false_flag": false})
	contributed, err := choose.Apply(ctx)
	require.NoError(t, err)
	require.True(t, contributed)
	require.Equal(t, "TWO", ctx.SQL())
}

func TestBindThenReference(t *testing.T) {
	tree := &Mixed{Children: []SqlNode{
		&Bind{Name: "pattern", ValueExpr: mustParse(t, "'%' + name + '%'")},
		&Text{Literal: "LIKE #{pattern}"},
	}}
	ctx := NewDynamicContext(map[string]any{"name": "jo"})
	_, err := tree.Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, "LIKE #{pattern}", ctx.SQL())
	require.Equal(t, "%jo%", ctx.Bindings()["pattern"])
}

func TestDeterminismAcrossEvaluations(t *testing.T) {
	build := func() *Foreach {
		return &Foreach{Collection: mustParse(t, "ids"), ItemName: "id", Open: "(", Close: ")", Separator: ",", Inner: &Text{Literal: "#{id}"}}
	}
	param := map[string]any{"ids": []any{int64(1), int64(2)}}
	ctx1 := NewDynamicContext(param)
	_, err := build().Apply(ctx1)
	require.NoError(t, err)
	ctx2 := NewDynamicContext(param)
	_, err = build().Apply(ctx2)
	require.NoError(t, err)
	require.Equal(t, ctx1.SQL(), ctx2.SQL())
}
