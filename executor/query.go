package executor

import (
	"context"
	"database/sql"
	"time"

	"github.com/gosqlmapper/sqlmapper/configuration"
	driverpkg "github.com/gosqlmapper/sqlmapper/driver"
	"github.com/gosqlmapper/sqlmapper/sql/builder"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
)

// boundFor resolves a statement's BoundSql for param and extracts the
// flat parameter bag used for first-level cache keying.
func (b *base) boundFor(ms *configuration.MappedStatement, param any) (*builder.BoundSql, map[string]any, error) {
	bound, err := ms.SqlSource.BoundSql(param)
	if err != nil {
		return nil, nil, err
	}
	extracted := ExtractParameters(param)
	return bound, extracted, nil
}

// lookupCache consults the first-level cache when caching is enabled,
// returning the previously hydrated result on a hit.
func (b *base) lookupCache(ms *configuration.MappedStatement, bound *builder.BoundSql, extracted map[string]any) (uint64, []any, bool) {
	if b.cfg == nil || !b.cfg.Settings.CacheEnabled {
		return 0, nil, false
	}
	key, err := cacheKey(ms.ID, bound.SQL, extracted)
	if err != nil {
		return 0, nil, false
	}
	if v, ok := b.cache.get(key); ok {
		return key, v.([]any), true
	}
	return key, nil, false
}

// executeSelect binds, runs, and hydrates a SELECT against an
// already-resolved *sql.Stmt, then records telemetry and populates the
// first-level cache.
func (b *base) executeSelect(ctx context.Context, stmt *sql.Stmt, ms *configuration.MappedStatement, param any, bound *builder.BoundSql, cacheEnabled bool, key uint64, extracted map[string]any) ([]any, error) {
	span, ctx := b.startSpan(ctx, "executor.select")
	defer span.Finish()

	args, err := bindArgs(bound, param, b.cfg.TypeHandlers)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, wrapSQLError(bound, extracted, err)
	}

	reader, err := driverpkg.NewRowReader(rows)
	if err != nil {
		rows.Close()
		return nil, wrapSQLError(bound, extracted, err)
	}
	data, err := reader.ReadAll(rows)
	if err != nil {
		return nil, wrapSQLError(bound, extracted, err)
	}

	result, err := b.hydrateRows(ms, data, reader.Columns())
	if err != nil {
		return nil, err
	}

	b.recordTelemetry(ms.ID, bound.SQL, extracted, time.Since(start), len(data))
	if cacheEnabled {
		b.cache.put(key, result)
	}
	return result, nil
}

func (b *base) hydrateRows(ms *configuration.MappedStatement, data []hydrate.Row, columns []string) ([]any, error) {
	opt := hydrate.Options{
		Mode:          ms.EffectiveHydrationMode(),
		MapUnderscore: b.cfg.Settings.MapUnderscoreToCamelCase,
		TypeHandlers:  b.cfg.TypeHandlers,
		ColumnOrder:   columns,
		TypeName:      ms.ResultTypeName,
	}
	if ms.ResultMapID != "" {
		if rm, ok := b.cfg.ResultMap(ms.ResultMapID); ok {
			opt.ResultMap = rm
			if rm.TypeName != "" {
				opt.TypeName = rm.TypeName
			}
		}
	}
	opt.ResolveResultMap = b.cfg.ResultMap
	opt.Adapters = b.adapters
	return hydrate.Rows(data, opt)
}

func wrapSQLError(bound *builder.BoundSql, params map[string]any, cause error) error {
	return newSQLError(bound.SQL, params, cause)
}
