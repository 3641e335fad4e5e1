package session

import (
	"context"
	"database/sql"
	"sync"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/datasource"
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/executor"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// connectionSource is the subset of datasource.Simple/Unpooled/Pooled
// the factory needs.
type connectionSource interface {
	GetConnection(ctx context.Context) (*datasource.Connection, error)
	Close() error
}

// Factory opens sessions against a Configuration's environments (§4.7).
// It lazily opens and caches one connection source per environment,
// mirroring the teacher driver's lazy mutex-guarded catalog-per-source
// cache rather than opening a fresh *sql.DB on every session.
type Factory struct {
	cfg *configuration.Configuration

	mu      sync.Mutex
	sources map[string]connectionSource

	adapters *hydrate.Registry
	logger   *logrus.Entry
	tracer   opentracing.Tracer
	logSink  executor.QueryLogger
}

// NewFactory builds a Factory over cfg. adapters may be nil (object-mode
// hydration falls back to plain maps); logger/tracer/logSink may be nil
// (defaults resolve the same way executor.newBase's do).
func NewFactory(cfg *configuration.Configuration, adapters *hydrate.Registry, logger *logrus.Entry, tracer opentracing.Tracer, logSink executor.QueryLogger) *Factory {
	return &Factory{
		cfg:      cfg,
		sources:  map[string]connectionSource{},
		adapters: adapters,
		logger:   logger,
		tracer:   tracer,
		logSink:  logSink,
	}
}

// Open resolves the configuration's default environment and opens a
// session using its configured default executor strategy (§4.7).
func (f *Factory) Open(ctx context.Context) (*Session, error) {
	return f.OpenWithExecutor(ctx, f.cfg.Settings.DefaultExecutorType)
}

// OpenWithExecutor is Open with an explicit executor strategy override.
func (f *Factory) OpenWithExecutor(ctx context.Context, execType configuration.ExecutorType) (*Session, error) {
	env, err := f.cfg.DefaultEnvironment()
	if err != nil {
		return nil, err
	}
	return f.openEnvironment(ctx, env, execType)
}

// OpenEnvironment opens a session against a named environment instead of
// the configured default.
func (f *Factory) OpenEnvironment(ctx context.Context, environmentID string) (*Session, error) {
	env, ok := f.cfg.Environment(environmentID)
	if !ok {
		return nil, errs.ConfigurationError.New("unknown environment: " + environmentID)
	}
	return f.openEnvironment(ctx, env, f.cfg.Settings.DefaultExecutorType)
}

func (f *Factory) openEnvironment(ctx context.Context, env *configuration.Environment, execType configuration.ExecutorType) (*Session, error) {
	src, err := f.resolveSource(env)
	if err != nil {
		return nil, err
	}

	conn, err := src.GetConnection(ctx)
	if err != nil {
		return nil, err
	}

	autoCommit := env.TransactionFactoryName == "MANAGED"
	var tx *sql.Tx
	if !autoCommit {
		tx, err = conn.Conn.BeginTx(ctx, nil)
		if err != nil {
			_ = f.discard(src, conn)
			return nil, err
		}
		conn.SetTx(tx)
	}

	exec := f.newExecutor(execType, conn.Conn, tx)
	s := newSession(f.cfg, exec, src, conn, autoCommit)
	s.logger.WithFields(logrus.Fields{"environment": env.ID, "autoCommit": autoCommit}).Debug("session opened")
	return s, nil
}

func (f *Factory) discard(src connectionSource, conn *datasource.Connection) error {
	if rel, ok := src.(releaser); ok {
		return rel.ReleaseConnection(conn)
	}
	return conn.Close()
}

func (f *Factory) newExecutor(execType configuration.ExecutorType, conn *sql.Conn, tx *sql.Tx) executor.Executor {
	switch execType {
	case configuration.Reuse:
		return executor.NewReuse(conn, tx, f.cfg, f.adapters, f.logger, f.tracer, f.logSink)
	case configuration.Batch:
		return executor.NewBatch(conn, tx, f.cfg, f.adapters, f.logger, f.tracer, f.logSink)
	default:
		return executor.NewSimple(conn, tx, f.cfg, f.adapters, f.logger, f.tracer, f.logSink)
	}
}

// resolveSource lazily opens and caches the connection source for env.
func (f *Factory) resolveSource(env *configuration.Environment) (connectionSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if src, ok := f.sources[env.ID]; ok {
		return src, nil
	}

	src, err := openSource(env)
	if err != nil {
		return nil, err
	}
	f.sources[env.ID] = src
	return src, nil
}

func openSource(env *configuration.Environment) (connectionSource, error) {
	opts := datasource.DefaultOptions()
	switch env.DataSourceKind {
	case configuration.DataSourceUnpooled:
		return datasource.NewUnpooled(env.DataSourceDriver, env.DataSourceDSN, opts)
	case configuration.DataSourcePooled:
		size := env.DataSourcePoolSize
		if size <= 0 {
			size = 10
		}
		return datasource.NewPooled(env.DataSourceDriver, env.DataSourceDSN, size, opts)
	default:
		return datasource.NewSimple(env.DataSourceDriver, env.DataSourceDSN, opts)
	}
}

// Close shuts down every connection source this factory has opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	sources := f.sources
	f.sources = map[string]connectionSource{}
	f.mu.Unlock()

	var firstErr error
	for _, src := range sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
