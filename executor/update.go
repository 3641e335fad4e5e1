package executor

import (
	"context"
	"database/sql"
	"time"

	"github.com/gosqlmapper/sqlmapper/configuration"
	driverpkg "github.com/gosqlmapper/sqlmapper/driver"
	"github.com/gosqlmapper/sqlmapper/sql/builder"
)

// executeUpdate binds and runs an INSERT/UPDATE/DELETE against an
// already-resolved *sql.Stmt, clears the first-level cache (§4.6: "every
// update clears it"), performs generated-key writeback, and records
// telemetry.
func (b *base) executeUpdate(ctx context.Context, stmt *sql.Stmt, ms *configuration.MappedStatement, param any, bound *builder.BoundSql, extracted map[string]any) (int64, error) {
	span, ctx := b.startSpan(ctx, "executor.update")
	defer span.Finish()
	defer b.cache.clear()

	args, err := bindArgs(bound, param, b.cfg.TypeHandlers)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	sqlResult, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, wrapSQLError(bound, extracted, err)
	}

	result, err := driverpkg.NewExecResult(sqlResult)
	if err != nil {
		return 0, wrapSQLError(bound, extracted, err)
	}

	if err := writeGeneratedKey(ms, param, result); err != nil {
		return 0, err
	}

	b.recordTelemetry(ms.ID, bound.SQL, extracted, time.Since(start), int(result.RowsAffected))
	return result.RowsAffected, nil
}
