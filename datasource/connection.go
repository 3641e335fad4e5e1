// Package datasource implements the three connection sources of §4.8:
// Simple, Unpooled, and Pooled, sharing one `getConnection`/options
// contract over `database/sql`.
package datasource

import (
	"database/sql"
	"sync"

	uuid "github.com/satori/go.uuid"
)

// Options are the standard defaults every connection source applies
// before handing a connection to the caller, plus whatever the caller
// overrides. FailOnError and AssociativeFetch describe this engine's
// fixed behavior (errors are always returned rather than swallowed, and
// rows are always read into column-name-keyed maps by driver.RowReader)
// and exist here only to be named in configuration; PlaceholderEmulation
// left false matches "no driver-side placeholder emulation".
type Options struct {
	FailOnError          bool
	AssociativeFetch     bool
	PlaceholderEmulation bool
	ConnMaxLifetimeMs    int
}

// DefaultOptions returns the standard defaults named in §4.8.
func DefaultOptions() Options {
	return Options{FailOnError: true, AssociativeFetch: true}
}

// Connection is one physical database/sql connection plus the
// bookkeeping a session/executor needs: a stable id and the open
// transaction, if any, so a pooled release can roll it back.
type Connection struct {
	ID   string
	Conn *sql.Conn

	txMu sync.Mutex
	tx   *sql.Tx
}

func newConnection(c *sql.Conn) *Connection {
	return &Connection{ID: uuid.NewV4().String(), Conn: c}
}

// WrapConnection builds a Connection around an already-open *sql.Conn
// obtained outside of Simple/Unpooled/Pooled (a session factory wiring a
// connection source the host application manages itself, or a test).
func WrapConnection(c *sql.Conn) *Connection {
	return newConnection(c)
}

// SetTx records the transaction currently open on this connection.
func (c *Connection) SetTx(tx *sql.Tx) {
	c.txMu.Lock()
	defer c.txMu.Unlock()
	c.tx = tx
}

// Tx returns the transaction currently open on this connection, if any.
func (c *Connection) Tx() *sql.Tx {
	c.txMu.Lock()
	defer c.txMu.Unlock()
	return c.tx
}

// rollbackOpenTx rolls back and clears any transaction left open on this
// connection, used when a Pooled connection is released back to the
// free-list (§4.8: "releaseConnection rolls back any open transaction").
func (c *Connection) rollbackOpenTx() error {
	c.txMu.Lock()
	defer c.txMu.Unlock()
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}

// Close releases the underlying database/sql connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
