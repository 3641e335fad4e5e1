package session

import (
	"context"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/datasource"
	"github.com/gosqlmapper/sqlmapper/executor"
	"github.com/gosqlmapper/sqlmapper/sql/builder"
	"github.com/stretchr/testify/require"
)

func newTestCfg() *configuration.Configuration {
	cfg := configuration.New()
	cfg.Settings.CacheEnabled = false
	return cfg
}

func staticStatement(id, sqlText string, kind configuration.StatementKind) *configuration.MappedStatement {
	return &configuration.MappedStatement{
		ID:        id,
		Kind:      kind,
		SqlSource: builder.NewStaticSqlSource(sqlText),
	}
}

func newTestSession(t *testing.T, cfg *configuration.Configuration) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	exec := executor.NewSimple(conn, nil, cfg, nil, nil, nil, nil)
	dsConn := datasource.WrapConnection(conn)
	return newSession(cfg, exec, nopSource{}, dsConn, true), mock
}

// nopSource stands in for a real connection source (datasource.Simple,
// Unpooled or Pooled); it never implements
// releaser, so Session.Close falls back to closing the connection
// directly, which is what a test-owned *sql.Conn wants anyway.
type nopSource struct{}

func (nopSource) GetConnection(ctx context.Context) (*datasource.Connection, error) { return nil, nil }
func (nopSource) Close() error                                                      { return nil }

func TestSelectOneReturnsNilOnZeroRows(t *testing.T) {
	cfg := newTestCfg()
	sess, mock := newTestSession(t, cfg)

	sqlText := "SELECT id FROM users WHERE id = #{id}"
	cfg.AddStatement(staticStatement("Users.find", sqlText, configuration.Select))
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT id FROM users WHERE id = ?")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	v, err := sess.SelectOne(context.Background(), "Users.find", map[string]any{"id": 1})
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSelectOneFailsOnMultipleRows(t *testing.T) {
	cfg := newTestCfg()
	sess, mock := newTestSession(t, cfg)

	sqlText := "SELECT id FROM users"
	cfg.AddStatement(staticStatement("Users.all", sqlText, configuration.Select))
	mock.ExpectPrepare(regexp.QuoteMeta(sqlText)).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))

	_, err := sess.SelectOne(context.Background(), "Users.all", map[string]any{})
	require.Error(t, err)
}

func TestSelectMapKeysByPropertyAndPreservesOrder(t *testing.T) {
	cfg := newTestCfg()
	sess, mock := newTestSession(t, cfg)

	ms := staticStatement("Users.all", "SELECT id, name FROM users", configuration.Select)
	ms.Hydration = configuration.HydrationArray
	cfg.AddStatement(ms)
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT id, name FROM users")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "Bob").
			AddRow(int64(1), "Ada"))

	om, err := sess.SelectMap(context.Background(), "Users.all", map[string]any{}, "id")
	require.NoError(t, err)
	require.Equal(t, []any{int64(2), int64(1)}, om.Keys())
	row, ok := om.Get(int64(1))
	require.True(t, ok)
	require.Equal(t, "Ada", row.(map[string]any)["name"])
}

func TestInsertMarksSessionDirtyAndDeleteRejectsSelect(t *testing.T) {
	cfg := newTestCfg()
	sess, mock := newTestSession(t, cfg)

	sqlText := "INSERT INTO users (name) VALUES (#{name})"
	cfg.AddStatement(staticStatement("Users.insert", sqlText, configuration.Insert))
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO users (name) VALUES (?)")).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := sess.Insert(context.Background(), "Users.insert", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.True(t, sess.dirty)

	cfg.AddStatement(staticStatement("Users.find", "SELECT id FROM users", configuration.Select))
	_, err = sess.Delete(context.Background(), "Users.find", map[string]any{})
	require.Error(t, err)
}

func TestGetMapperCachesConstructedProxy(t *testing.T) {
	cfg := newTestCfg()
	sess, _ := newTestSession(t, cfg)

	calls := 0
	RegisterMapper("test.CounterMapper", func(s *Session) any {
		calls++
		return &struct{}{}
	})

	p1, err := sess.GetMapper("test.CounterMapper")
	require.NoError(t, err)
	p2, err := sess.GetMapper("test.CounterMapper")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Same(t, p1, p2)
}

func TestDispatchMapperCallSelectsListForSliceReturn(t *testing.T) {
	cfg := newTestCfg()
	sess, mock := newTestSession(t, cfg)

	ms := staticStatement("test.UserMapper.FindAll", "SELECT id FROM users", configuration.Select)
	ms.Hydration = configuration.HydrationArray
	cfg.AddStatement(ms)
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT id FROM users")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	sliceType := reflect.TypeOf([]any{})
	result, err := sess.DispatchMapperCall(context.Background(), "test.UserMapper", "FindAll", nil, nil, sliceType)
	require.NoError(t, err)
	require.Len(t, result.([]any), 1)
}
