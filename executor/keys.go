package executor

import (
	"reflect"

	"github.com/gosqlmapper/sqlmapper/configuration"
	driverpkg "github.com/gosqlmapper/sqlmapper/driver"
	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
)

// writeGeneratedKey implements §4.6's post-INSERT writeback: when the
// statement authored useGeneratedKeys and the driver returned an insert
// id, write it under keyProperty — into the caller's map directly (by
// value: visible to the caller since Go maps are reference types, unlike
// the copy-on-write semantics some host languages give array
// parameters), or via setter-then-attribute on an object (skipping a
// read-only property; a pointer receiver is required for the write to be
// visible to the caller, same as any other Go mutation-by-reference).
// A missing target property is silently ignored, matching §4.6.
func writeGeneratedKey(ms *configuration.MappedStatement, param any, result driverpkg.ExecResult) error {
	if !ms.UseGeneratedKeys || !result.HasInsertID || ms.KeyProperty == "" {
		return nil
	}
	if param == nil {
		return nil
	}
	if _, ok := param.(map[string]any); !ok && reflect.ValueOf(param).Kind() != reflect.Ptr {
		return nil // a value (non-pointer, non-map) parameter can never observe a writeback
	}
	return hydrate.Assign(param, ms.KeyProperty, result.LastInsertID)
}
