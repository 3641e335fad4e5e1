// Package session implements the session and transaction orchestration
// layer of §4.7: the per-call entry point that resolves a named statement,
// drives it through an Executor, and tracks enough state (dirty, closed)
// to make commit/rollback/close behave correctly without the caller
// having to reason about the executor or connection underneath.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/datasource"
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/executor"
	"github.com/sirupsen/logrus"
)

// releaser is implemented by connection sources that pool connections
// (datasource.Pooled) rather than discard them on close.
type releaser interface {
	ReleaseConnection(c *datasource.Connection) error
}

// Session is a single-threaded unit of work over one executor, one
// transaction, and one connection (§5: "A Session owns exactly one
// Executor which owns exactly one Transaction which owns exactly one
// Connection for the session's lifetime").
type Session struct {
	id  string
	cfg *configuration.Configuration

	exec executor.Executor
	src  any
	conn *datasource.Connection

	autoCommit bool
	logger     *logrus.Entry

	mu          sync.Mutex
	dirty       bool
	closed      bool
	mapperCache map[string]any
}

func newSession(cfg *configuration.Configuration, exec executor.Executor, src any, conn *datasource.Connection, autoCommit bool) *Session {
	id := uuid.New().String()
	return &Session{
		id:          id,
		cfg:         cfg,
		exec:        exec,
		src:         src,
		conn:        conn,
		autoCommit:  autoCommit,
		logger:      logrus.WithField("session", id),
		mapperCache: map[string]any{},
	}
}

// ID returns the session's unique identity, used to correlate its log
// entries and telemetry across a request's lifetime.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) ensureOpen() error {
	if s.closed {
		return errs.StateError.New("session is closed")
	}
	return nil
}

// resolveStatement looks up id and rejects it unless its kind is one of
// allowed (§4.7's statement-kind discipline).
func (s *Session) resolveStatement(id string, allowed ...configuration.StatementKind) (*configuration.MappedStatement, error) {
	ms, ok := s.cfg.Statement(id)
	if !ok {
		return nil, errs.ConfigurationError.New("unknown statement: " + id)
	}
	for _, kind := range allowed {
		if ms.Kind == kind {
			return ms, nil
		}
	}
	return nil, errs.QueryError.New(fmt.Sprintf("statement %s has the wrong kind for this call", id))
}

// Commit delegates to the executor, requiring a real commit unless the
// session is autoCommit, and always clears the dirty flag (§4.7).
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.exec.Commit(ctx, !s.autoCommit); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Rollback mirrors Commit for transaction rollback.
func (s *Session) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.exec.Rollback(ctx, !s.autoCommit); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Close is idempotent. If autoCommit is off and the session has pending
// writes, close forces a rollback before releasing the connection
// (§4.7).
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if !s.autoCommit && s.dirty {
		if err := s.exec.Rollback(ctx, true); err != nil {
			firstErr = err
		}
	}
	if err := s.exec.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.releaseConnection(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.logger.Debug("session closed")
	return firstErr
}

func (s *Session) releaseConnection() error {
	if rel, ok := s.src.(releaser); ok {
		return rel.ReleaseConnection(s.conn)
	}
	return s.conn.Close()
}

// FlushStatements delegates to the underlying executor (only meaningful
// for a Batch executor; Simple and Reuse treat it as a no-op).
func (s *Session) FlushStatements(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	return s.exec.FlushStatements(ctx)
}
