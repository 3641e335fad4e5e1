package builder

import (
	"testing"

	"github.com/gosqlmapper/sqlmapper/sql/dynamic"
	"github.com/gosqlmapper/sqlmapper/sql/expression"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceParameterMarkers(t *testing.T) {
	src := NewStaticSqlSource("SELECT * FROM ${table} WHERE id = #{id, jdbcType=INTEGER}")
	bound, err := src.BoundSql(map[string]any{"table": "users", "id": int64(5)})
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM users WHERE id = ?", bound.SQL)
	require.Len(t, bound.ParameterMappings, 1)
	require.Equal(t, "id", bound.ParameterMappings[0].Property)
	require.Equal(t, "INTEGER", bound.ParameterMappings[0].SqlType)
}

func TestPlaceholderCountMatchesMappingCount(t *testing.T) {
	src := NewStaticSqlSource("INSERT INTO t (a, b, c) VALUES (#{a}, #{b}, #{c})")
	bound, err := src.BoundSql(map[string]any{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)
	count := 0
	for _, c := range bound.SQL {
		if c == '?' {
			count++
		}
	}
	require.Equal(t, len(bound.ParameterMappings), count)
	require.Equal(t, []string{"a", "b", "c"}, []string{
		bound.ParameterMappings[0].Property,
		bound.ParameterMappings[1].Property,
		bound.ParameterMappings[2].Property,
	})
}

func TestMissingSubstitutionBecomesEmptyString(t *testing.T) {
	src := NewStaticSqlSource("SELECT * FROM ${table}")
	bound, err := src.BoundSql(map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM ", bound.SQL)
}

func TestDynamicSourceForeachAdditionalParameters(t *testing.T) {
	mustParse := func(src string) expression.Expr {
		e, err := expression.Parse(src)
		require.NoError(t, err)
		return e
	}
	tree := &dynamic.Where{Inner: &dynamic.Foreach{
		Collection: mustParse("ids"), ItemName: "id",
		Open: "id IN (", Close: ")", Separator: ",",
		Inner: &dynamic.Text{Literal: "#{id}"},
	}}
	src := NewDynamicSqlSource(tree)
	bound, err := src.BoundSql(map[string]any{"ids": []any{int64(1), int64(2)}})
	require.NoError(t, err)
	require.Equal(t, "WHERE id IN (?,?)", bound.SQL)
	require.Len(t, bound.ParameterMappings, 2)
	require.Equal(t, "__frch_id_0", bound.ParameterMappings[0].Property)
	require.Equal(t, int64(1), bound.AdditionalParameters["__frch_id_0"])
}
