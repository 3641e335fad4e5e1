// Package errs defines the error taxonomy used across the engine.
//
// Each kind is a distinct, matchable error class so callers can branch on
// `errs.QueryError.Is(err)` rather than string-sniffing messages; SqlError
// is a struct type, matched with `errors.As`.
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
	kinderrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ConfigurationError covers failures discovered while loading the
	// configuration registry: missing mapper file, unknown root element,
	// missing namespace, unknown driver, unresolved include, duplicate
	// statement id.
	ConfigurationError = kinderrors.NewKind("configuration error: %s")

	// ExpressionError covers malformed dynamic expressions or illegal
	// operator application inside the expression evaluator.
	ExpressionError = kinderrors.NewKind("expression error: %s")

	// HydrationError covers missing required constructor parameters,
	// invalid enum values, and nested result maps referenced but not
	// registered.
	HydrationError = kinderrors.NewKind("hydration error: %s")

	// QueryError covers selectOne receiving more than one row, and
	// statement-kind mismatches at session dispatch.
	QueryError = kinderrors.NewKind("query error: %s")

	// StateError covers operations attempted on a closed session or
	// executor.
	StateError = kinderrors.NewKind("state error: %s")
)

// SqlError wraps a driver-level failure during prepare/execute/fetch,
// carrying the final SQL text and the parameter map actually bound so the
// caller can diagnose without re-deriving either.
type SqlError struct {
	SQL        string
	Parameters map[string]any
	Cause      error
}

func (e *SqlError) Error() string {
	return fmt.Sprintf("sql error: %v (sql=%q params=%v)", e.Cause, e.SQL, e.Parameters)
}

func (e *SqlError) Unwrap() error {
	return e.Cause
}

// NewSqlError builds a SqlError, defensively copying the parameter map so
// later mutation by the caller can't retroactively change a reported error,
// and attaching a stack trace to cause if it doesn't already carry one.
func NewSqlError(sql string, params map[string]any, cause error) *SqlError {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &SqlError{SQL: sql, Parameters: copied, Cause: errors.WithStack(cause)}
}
