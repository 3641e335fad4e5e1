package executor

import (
	"context"
	"database/sql"
	"sync"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Reuse caches prepared statements by SQL string within the session,
// preparing on a miss and reusing on a hit (§4.6).
type Reuse struct {
	*base
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

// NewReuse builds a Reuse executor over the given connection/transaction
// pair.
func NewReuse(conn *sql.Conn, tx *sql.Tx, cfg *configuration.Configuration, adapters *hydrate.Registry, logger *logrus.Entry, tracer opentracing.Tracer, logSnk QueryLogger) *Reuse {
	return &Reuse{base: newBase(conn, tx, cfg, adapters, logger, tracer, logSnk), stmts: map[string]*sql.Stmt{}}
}

func (r *Reuse) resolveStatement(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stmt, ok := r.stmts[sqlText]; ok {
		return stmt, nil
	}
	stmt, err := r.active().PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	r.stmts[sqlText] = stmt
	return stmt, nil
}

func (r *Reuse) Query(ctx context.Context, ms *configuration.MappedStatement, param any) ([]any, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	bound, extracted, err := r.boundFor(ms, param)
	if err != nil {
		return nil, err
	}
	key, cached, hit := r.lookupCache(ms, bound, extracted)
	if hit {
		return cached, nil
	}

	stmt, err := r.resolveStatement(ctx, bound.SQL)
	if err != nil {
		return nil, wrapSQLError(bound, extracted, err)
	}

	return r.executeSelect(ctx, stmt, ms, param, bound, r.cfg.Settings.CacheEnabled, key, extracted)
}

func (r *Reuse) Update(ctx context.Context, ms *configuration.MappedStatement, param any) (int64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	bound, extracted, err := r.boundFor(ms, param)
	if err != nil {
		return 0, err
	}
	stmt, err := r.resolveStatement(ctx, bound.SQL)
	if err != nil {
		return 0, wrapSQLError(bound, extracted, err)
	}

	return r.executeUpdate(ctx, stmt, ms, param, bound, extracted)
}

// FlushStatements is a no-op for Reuse: it never defers updates.
func (r *Reuse) FlushStatements(ctx context.Context) ([]int64, error) {
	return nil, nil
}

// Close clears the prepared-statement cache (§4.6).
func (r *Reuse) Close() error {
	r.mu.Lock()
	stmts := r.stmts
	r.stmts = map[string]*sql.Stmt{}
	r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.cache.clear()

	var firstErr error
	for _, stmt := range stmts {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ Executor = (*Reuse)(nil)
