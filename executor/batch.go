package executor

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/gosqlmapper/sqlmapper/configuration"
	driverpkg "github.com/gosqlmapper/sqlmapper/driver"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// batchEntry accumulates the executions run against one prepared
// statement while its SQL stays the current batch's SQL (§4.6).
type batchEntry struct {
	sql     string
	stmt    *sql.Stmt
	results []int64
}

// Batch queues updates against the current batch's prepared statement,
// starting a new entry whenever the SQL changes, and reports row counts
// only once FlushStatements runs (§4.6). Queries always flush the
// pending batch first.
type Batch struct {
	*base
	mu      sync.Mutex
	entries []*batchEntry
}

// NewBatch builds a Batch executor over the given connection/
// transaction pair.
func NewBatch(conn *sql.Conn, tx *sql.Tx, cfg *configuration.Configuration, adapters *hydrate.Registry, logger *logrus.Entry, tracer opentracing.Tracer, logSnk QueryLogger) *Batch {
	return &Batch{base: newBase(conn, tx, cfg, adapters, logger, tracer, logSnk)}
}

func (b *Batch) Query(ctx context.Context, ms *configuration.MappedStatement, param any) ([]any, error) {
	if err := b.ensureOpen(); err != nil {
		return nil, err
	}
	if _, err := b.FlushStatements(ctx); err != nil {
		return nil, err
	}

	bound, extracted, err := b.boundFor(ms, param)
	if err != nil {
		return nil, err
	}
	key, cached, hit := b.lookupCache(ms, bound, extracted)
	if hit {
		return cached, nil
	}

	stmt, err := b.active().PrepareContext(ctx, bound.SQL)
	if err != nil {
		return nil, wrapSQLError(bound, extracted, err)
	}
	defer stmt.Close()

	return b.executeSelect(ctx, stmt, ms, param, bound, b.cfg.Settings.CacheEnabled, key, extracted)
}

// Update queues a bind+execute against the current batch entry,
// returning BatchDeferred; the real row count surfaces from
// FlushStatements.
func (b *Batch) Update(ctx context.Context, ms *configuration.MappedStatement, param any) (int64, error) {
	if err := b.ensureOpen(); err != nil {
		return 0, err
	}
	bound, extracted, err := b.boundFor(ms, param)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	entry := b.currentEntryLocked(bound.SQL)
	if entry == nil {
		stmt, err := b.active().PrepareContext(ctx, bound.SQL)
		if err != nil {
			b.mu.Unlock()
			return 0, wrapSQLError(bound, extracted, err)
		}
		entry = &batchEntry{sql: bound.SQL, stmt: stmt}
		b.entries = append(b.entries, entry)
	}
	b.mu.Unlock()

	args, err := bindArgs(bound, param, b.cfg.TypeHandlers)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	sqlResult, err := entry.stmt.ExecContext(ctx, args...)
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

	b.mu.Lock()
	entry.results = append(entry.results, result.RowsAffected)
	b.mu.Unlock()

	b.cache.clear()
	b.recordTelemetry(ms.ID, bound.SQL, extracted, time.Since(start), int(result.RowsAffected))
	return BatchDeferred, nil
}

func (b *Batch) currentEntryLocked(sqlText string) *batchEntry {
	if len(b.entries) == 0 {
		return nil
	}
	last := b.entries[len(b.entries)-1]
	if last.sql == sqlText {
		return last
	}
	return nil
}

// FlushStatements closes every batch entry's prepared statement and
// returns their row counts, concatenated in submission order, resetting
// the batch state (§4.6).
func (b *Batch) FlushStatements(ctx context.Context) ([]int64, error) {
	b.mu.Lock()
	entries := b.entries
	b.entries = nil
	b.mu.Unlock()

	var out []int64
	var firstErr error
	for _, entry := range entries {
		out = append(out, entry.results...)
		if err := entry.stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}

// Close clears any pending batch without flushing it (§4.6).
func (b *Batch) Close() error {
	b.mu.Lock()
	entries := b.entries
	b.entries = nil
	b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.cache.clear()

	var firstErr error
	for _, entry := range entries {
		if err := entry.stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ Executor = (*Batch)(nil)
