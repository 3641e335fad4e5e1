package driver

import (
	"database/sql"
	"reflect"

	"github.com/gosqlmapper/sqlmapper/sql/hydrate"
)

// RowReader buffers an executed `*sql.Rows` into hydrate.Row maps, one
// per result row, converting scanned column values by reflected kind the
// way the teacher's Rows.Next/convertRowValue pair does per-column.
type RowReader struct {
	columns []string
}

// NewRowReader resolves the column list once for a query result.
func NewRowReader(rows *sql.Rows) (*RowReader, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return &RowReader{columns: cols}, nil
}

// Columns returns the column names backing this reader, in select order.
func (r *RowReader) Columns() []string {
	return r.columns
}

// ReadAll scans every remaining row into a hydrate.Row, closing rows when
// done or on error.
func (r *RowReader) ReadAll(rows *sql.Rows) ([]hydrate.Row, error) {
	defer rows.Close()

	var out []hydrate.Row
	dest := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(hydrate.Row, len(r.columns))
		for i, col := range r.columns {
			row[col] = normalizeScanned(dest[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeScanned widens a driver-scanned value's reflected kind into the
// canonical primitive type handlers expect (int64, float64, string, bool,
// []byte, or time.Time pass through unchanged), mirroring the teacher's
// convertRowValue kind switch.
func normalizeScanned(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}
