package executor

import (
	"context"
	"database/sql"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Simple prepares a fresh statement per call and closes it immediately
// after use (§4.6).
type Simple struct {
	*base
}

// NewSimple builds a Simple executor over the given connection/
// transaction pair.
func NewSimple(conn *sql.Conn, tx *sql.Tx, cfg *configuration.Configuration, adapters *hydrate.Registry, logger *logrus.Entry, tracer opentracing.Tracer, logSnk QueryLogger) *Simple {
	return &Simple{base: newBase(conn, tx, cfg, adapters, logger, tracer, logSnk)}
}

func (s *Simple) Query(ctx context.Context, ms *configuration.MappedStatement, param any) ([]any, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	bound, extracted, err := s.boundFor(ms, param)
	if err != nil {
		return nil, err
	}
	key, cached, hit := s.lookupCache(ms, bound, extracted)
	if hit {
		return cached, nil
	}

	stmt, err := s.active().PrepareContext(ctx, bound.SQL)
	if err != nil {
		return nil, wrapSQLError(bound, extracted, err)
	}
	defer stmt.Close()

	return s.executeSelect(ctx, stmt, ms, param, bound, s.cfg.Settings.CacheEnabled, key, extracted)
}

func (s *Simple) Update(ctx context.Context, ms *configuration.MappedStatement, param any) (int64, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	bound, extracted, err := s.boundFor(ms, param)
	if err != nil {
		return 0, err
	}
	stmt, err := s.active().PrepareContext(ctx, bound.SQL)
	if err != nil {
		return 0, wrapSQLError(bound, extracted, err)
	}
	defer stmt.Close()

	return s.executeUpdate(ctx, stmt, ms, param, bound, extracted)
}

// FlushStatements is a no-op for Simple: it never defers updates.
func (s *Simple) FlushStatements(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func (s *Simple) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache.clear()
	return nil
}

var _ Executor = (*Simple)(nil)
