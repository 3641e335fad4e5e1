package executor

import (
	"context"
	"database/sql"
	"time"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// querier is the common subset of *sql.Conn and *sql.Tx an executor
// issues statements against, so the same execution code runs whether or
// not a transaction is open.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// base holds the state and behavior shared by Simple, Reuse, and Batch
// (§4.6): the first-level cache, the active connection/transaction, and
// query telemetry.
type base struct {
	conn *sql.Conn
	tx   *sql.Tx
	cfg  *configuration.Configuration

	adapters *hydrate.Registry
	cache    *firstLevelCache
	logger *logrus.Entry
	tracer opentracing.Tracer

	last   Telemetry
	logSnk QueryLogger
	closed bool
}

// newBase builds the shared executor state for a freshly opened session.
// adapters may be nil, in which case object-mode hydration falls back to
// plain map construction for every result type (no Go struct registered).
func newBase(conn *sql.Conn, tx *sql.Tx, cfg *configuration.Configuration, adapters *hydrate.Registry, logger *logrus.Entry, tracer opentracing.Tracer, logSnk QueryLogger) *base {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}
	if adapters == nil {
		adapters = hydrate.NewRegistry()
	}
	return &base{
		conn:     conn,
		tx:       tx,
		cfg:      cfg,
		adapters: adapters,
		cache:    newFirstLevelCache(),
		logger:   logger,
		tracer:   tracer,
		logSnk:   logSnk,
	}
}

func (b *base) active() querier {
	if b.tx != nil {
		return b.tx
	}
	return b.conn
}

func (b *base) ensureOpen() error {
	if b.closed {
		return errs.StateError.New("executor is closed")
	}
	return nil
}

// Commit delegates to the underlying transaction when one is open,
// clearing the first-level cache unconditionally (§4.6, §4.7: "required
// = !autoCommit").
func (b *base) Commit(ctx context.Context, required bool) error {
	defer b.cache.clear()
	if b.tx == nil {
		if required {
			return errs.StateError.New("commit required but no transaction is open")
		}
		return nil
	}
	return b.tx.Commit()
}

// Rollback mirrors Commit for transaction rollback.
func (b *base) Rollback(ctx context.Context, required bool) error {
	defer b.cache.clear()
	if b.tx == nil {
		if required {
			return errs.StateError.New("rollback required but no transaction is open")
		}
		return nil
	}
	return b.tx.Rollback()
}

// LastQuery returns the most recently recorded telemetry.
func (b *base) LastQuery() Telemetry {
	return b.last
}

func (b *base) recordTelemetry(statementID, sql string, params map[string]any, elapsed time.Duration, rowCount int) {
	t := Telemetry{
		StatementID:   statementID,
		SQL:           sql,
		Parameters:    params,
		ElapsedMillis: elapsed.Milliseconds(),
		RowCount:      rowCount,
	}
	b.last = t
	if b.cfg != nil && b.cfg.Settings.DebugMode {
		b.logger.WithFields(logrus.Fields{
			"statement_id": t.StatementID,
			"sql":          t.SQL,
			"elapsed_ms":   t.ElapsedMillis,
			"row_count":    t.RowCount,
		}).Debug("executed statement")
		if b.logSnk != nil {
			b.logSnk.LogQuery(t)
		}
	}
}

func (b *base) startSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContextWithTracer(ctx, b.tracer, operationName)
}
