package executor

import (
	"context"

	"github.com/gosqlmapper/sqlmapper/configuration"
)

// Executor is the contract the session layer drives (§4.6). Query
// returns hydrated results for a SELECT/CALLABLE statement; Update runs
// an INSERT/UPDATE/DELETE and returns its row count, or -1 for a Batch
// executor's deferred update (see FlushStatements).
type Executor interface {
	Query(ctx context.Context, ms *configuration.MappedStatement, param any) ([]any, error)
	Update(ctx context.Context, ms *configuration.MappedStatement, param any) (int64, error)
	FlushStatements(ctx context.Context) ([]int64, error)
	Commit(ctx context.Context, required bool) error
	Rollback(ctx context.Context, required bool) error
	Close() error
	LastQuery() Telemetry
}

// BatchDeferred is the sentinel Batch.Update returns: the real row count
// is only known once FlushStatements runs.
const BatchDeferred int64 = -1
