package datasource

import (
	"context"
	"database/sql"
	"sync"
)

// Pooled maintains a bounded LIFO free-list of idle connections over a
// shared `database/sql.DB` (§4.8). GetConnection pops the most recently
// released connection if one is available; otherwise a new one is
// created and the total-created counter is incremented — the total
// created is unbounded, only idle free-list occupancy is capped.
type Pooled struct {
	db      *sql.DB
	options Options
	maxSize int

	mu       sync.Mutex
	freeList []*Connection
	created  int64
}

// NewPooled opens driverName/dsn for a Pooled connection source with the
// given idle free-list bound.
func NewPooled(driverName, dsn string, maxSize int, options Options) (*Pooled, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	applyConnMaxLifetime(db, options)
	return &Pooled{db: db, options: options, maxSize: maxSize}, nil
}

// GetConnection pops the head of the free-list (LIFO) if non-empty,
// otherwise opens a fresh connection.
func (p *Pooled) GetConnection(ctx context.Context) (*Connection, error) {
	p.mu.Lock()
	if n := len(p.freeList); n > 0 {
		c := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.created++
	p.mu.Unlock()
	return newConnection(c), nil
}

// ReleaseConnection rolls back any open transaction on c, then either
// returns it to the free-list (if the free-list is below maxSize, which
// also holds for a connection handed out before a Clear) or discards it
// by closing the underlying connection.
func (p *Pooled) ReleaseConnection(c *Connection) error {
	rollbackErr := c.rollbackOpenTx()

	p.mu.Lock()
	if len(p.freeList) < p.maxSize {
		p.freeList = append(p.freeList, c)
		p.mu.Unlock()
		return rollbackErr
	}
	p.mu.Unlock()

	closeErr := c.Close()
	if rollbackErr != nil {
		return rollbackErr
	}
	return closeErr
}

// Clear drops every idle connection from the free-list, closing each.
// Safe against a concurrent ReleaseConnection: a release racing Clear
// either lands in the now-empty list (kept) or is discarded by the
// maxSize check, never panics either way.
func (p *Pooled) Clear() {
	p.mu.Lock()
	drained := p.freeList
	p.freeList = nil
	p.mu.Unlock()

	for _, c := range drained {
		_ = c.Close()
	}
}

// CreatedCount reports the total number of connections ever created by
// this source (never decremented by Clear or release).
func (p *Pooled) CreatedCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// Close shuts down the underlying *sql.DB after clearing the free-list.
func (p *Pooled) Close() error {
	p.Clear()
	return p.db.Close()
}
