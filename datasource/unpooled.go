package datasource

import (
	"context"
	"database/sql"
	"sync/atomic"
)

// Unpooled behaves like Simple but counts every connection it creates,
// for tests and diagnostics (§4.8).
type Unpooled struct {
	db      *sql.DB
	options Options
	created int64
}

// NewUnpooled opens driverName/dsn for an Unpooled connection source.
func NewUnpooled(driverName, dsn string, options Options) (*Unpooled, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(0)
	applyConnMaxLifetime(db, options)
	return &Unpooled{db: db, options: options}, nil
}

// GetConnection returns a new connection and increments the created
// counter.
func (u *Unpooled) GetConnection(ctx context.Context) (*Connection, error) {
	c, err := u.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&u.created, 1)
	return newConnection(c), nil
}

// CreatedCount reports how many connections this source has created
// since the last Reset.
func (u *Unpooled) CreatedCount() int64 {
	return atomic.LoadInt64(&u.created)
}

// Reset zeroes the created-connection counter.
func (u *Unpooled) Reset() {
	atomic.StoreInt64(&u.created, 0)
}

// Close shuts down the underlying *sql.DB.
func (u *Unpooled) Close() error {
	return u.db.Close()
}
