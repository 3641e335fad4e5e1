package datasource

import (
	"context"
	"database/sql"
)

// Simple creates a fresh physical connection on every call (§4.8). Its
// underlying *sql.DB is opened with no idle-connection retention so
// `database/sql`'s own pool never hands back a connection this source
// already gave out.
type Simple struct {
	db      *sql.DB
	options Options
}

// NewSimple opens driverName/dsn for a Simple connection source.
func NewSimple(driverName, dsn string, options Options) (*Simple, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(0)
	applyConnMaxLifetime(db, options)
	return &Simple{db: db, options: options}, nil
}

// GetConnection returns a new connection configured with the standard
// defaults plus any caller overrides in s.options.
func (s *Simple) GetConnection(ctx context.Context) (*Connection, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return newConnection(c), nil
}

// Close shuts down the underlying *sql.DB.
func (s *Simple) Close() error {
	return s.db.Close()
}

func applyConnMaxLifetime(db *sql.DB, options Options) {
	if options.ConnMaxLifetimeMs > 0 {
		db.SetConnMaxLifetime(msToDuration(options.ConnMaxLifetimeMs))
	}
}
