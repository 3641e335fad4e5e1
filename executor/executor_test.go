package executor

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/sql/builder"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *configuration.Configuration {
	cfg := configuration.New()
	cfg.Settings.CacheEnabled = true
	return cfg
}

func staticStatement(id, sqlText string, kind configuration.StatementKind) *configuration.MappedStatement {
	return &configuration.MappedStatement{
		ID:        id,
		Kind:      kind,
		SqlSource: builder.NewStaticSqlSource(sqlText),
	}
}

func TestSimpleQueryHydratesAndCaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	sqlText := "SELECT id, name FROM users"
	mock.ExpectPrepare(regexp.QuoteMeta(sqlText)).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Ada"))

	exec := NewSimple(conn, nil, newTestConfig(), nil, nil, nil, nil)
	ms := staticStatement("Users.find", sqlText, configuration.Select)
	ms.Hydration = configuration.HydrationArray

	rows, err := exec.Query(ctx, ms, map[string]any{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	require.Equal(t, int64(1), row["id"])
	require.Equal(t, "Ada", row["name"])

	cachedRows, err := exec.Query(ctx, ms, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, rows, cachedRows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimpleUpdateWritesGeneratedKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	sqlText := "INSERT INTO users (name) VALUES (#{name})"
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO users (name) VALUES (?)")).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(42, 1))

	exec := NewSimple(conn, nil, newTestConfig(), nil, nil, nil, nil)
	ms := staticStatement("Users.insert", sqlText, configuration.Insert)
	ms.UseGeneratedKeys = true
	ms.KeyProperty = "id"

	param := map[string]any{"name": "Grace"}
	affected, err := exec.Update(ctx, ms, param)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	require.EqualValues(t, int64(42), param["id"])
}

func TestSimpleUpdateFailsOnUnresolvableDottedParameter(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	sqlText := "INSERT INTO users (name) VALUES (#{user.name})"
	exec := NewSimple(conn, nil, newTestConfig(), nil, nil, nil, nil)
	ms := staticStatement("Users.insert", sqlText, configuration.Insert)

	_, err = exec.Update(ctx, ms, map[string]any{"other": "value"})
	require.Error(t, err)
}

func TestBatchDefersRowCountsUntilFlush(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	sqlText := "UPDATE users SET name = #{name} WHERE id = #{id}"
	wantSQL := regexp.QuoteMeta("UPDATE users SET name = ? WHERE id = ?")
	prep := mock.ExpectPrepare(wantSQL)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	exec := NewBatch(conn, nil, newTestConfig(), nil, nil, nil, nil)
	ms := staticStatement("Users.rename", sqlText, configuration.Update)

	n1, err := exec.Update(ctx, ms, map[string]any{"name": "A", "id": 1})
	require.NoError(t, err)
	require.Equal(t, BatchDeferred, n1)

	n2, err := exec.Update(ctx, ms, map[string]any{"name": "B", "id": 2})
	require.NoError(t, err)
	require.Equal(t, BatchDeferred, n2)

	counts, err := exec.FlushStatements(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 1}, counts)
}
