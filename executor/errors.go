package executor

import "github.com/gosqlmapper/sqlmapper/errs"

func newSQLError(sql string, params map[string]any, cause error) error {
	return errs.NewSqlError(sql, params, cause)
}
