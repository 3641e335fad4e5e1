package session

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/executor"
)

// SelectOne executes id and fails with QueryError if more than one row
// comes back; zero rows yields (nil, nil) (§4.7).
func (s *Session) SelectOne(ctx context.Context, id string, param any) (any, error) {
	return s.selectOneWithMode(ctx, id, param, configuration.HydrationUnset)
}

func (s *Session) selectOneWithMode(ctx context.Context, id string, param any, mode configuration.HydrationMode) (any, error) {
	rows, err := s.SelectList(ctx, id, param, mode)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, errs.QueryError.New(fmt.Sprintf("selectOne: statement %s returned %d rows", id, len(rows)))
	}
}

// SelectList executes id and returns every hydrated row in order.
// hydrationOverride, when not HydrationUnset, overrides the statement's
// own declared hydration mode for this call only (§4.7).
func (s *Session) SelectList(ctx context.Context, id string, param any, hydrationOverride configuration.HydrationMode) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	ms, err := s.resolveStatement(id, configuration.Select, configuration.Callable)
	if err != nil {
		return nil, err
	}
	ms = withHydration(ms, hydrationOverride)
	return s.exec.Query(ctx, ms, param)
}

// SelectMap executes id and returns an ordered mapping keyed by
// keyProperty, extracted from each hydrated row (map rows: by key;
// object rows: by getter or attribute). Rows whose key value
// isn't a scalar are skipped (§4.7).
func (s *Session) SelectMap(ctx context.Context, id string, param any, keyProperty string) (*OrderedMap, error) {
	rows, err := s.SelectList(ctx, id, param, configuration.HydrationUnset)
	if err != nil {
		return nil, err
	}
	om := newOrderedMap()
	for _, row := range rows {
		key, ok := executor.ResolveParameter(row, keyProperty)
		if !ok || !isScalar(key) {
			continue
		}
		om.set(key, row)
	}
	return om, nil
}

// SelectCursor executes id and returns a lazy, single-pass sequence over
// its rows. Unlike selectOne/selectList/selectMap, it rejects CALLABLE
// statements outright — only a genuine SELECT may be streamed this way
// (§4.7).
//
// The underlying executor always fetches and hydrates every row before
// returning (sql/hydrate's nested-result grouping needs the full row set
// to dedup parent identities), so this cursor is single-pass over an
// already-materialized slice rather than a row-at-a-time driver fetch;
// it still gives callers the sequential, forward-only access pattern the
// contract asks for without re-running the query.
func (s *Session) SelectCursor(ctx context.Context, id string, param any) (*Cursor, error) {
	s.mu.Lock()
	if err := s.ensureOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ms, err := s.resolveStatement(id, configuration.Select)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	rows, err := s.exec.Query(ctx, ms, param)
	if err != nil {
		return nil, err
	}
	return &Cursor{rows: rows}, nil
}

func withHydration(ms *configuration.MappedStatement, mode configuration.HydrationMode) *configuration.MappedStatement {
	if mode == configuration.HydrationUnset {
		return ms
	}
	clone := *ms
	clone.Hydration = mode
	return &clone
}

func isScalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		return false
	default:
		return true
	}
}

// Cursor is a forward-only, single-pass sequence of hydrated rows
// returned by SelectCursor.
type Cursor struct {
	rows []any
	idx  int
}

// Next returns the next row and true, or (nil, false) once exhausted.
func (c *Cursor) Next() (any, bool) {
	if c.idx >= len(c.rows) {
		return nil, false
	}
	v := c.rows[c.idx]
	c.idx++
	return v, true
}

// Close discards the cursor's remaining rows.
func (c *Cursor) Close() error {
	c.rows = nil
	c.idx = 0
	return nil
}
