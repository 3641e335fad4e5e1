package executor

// Telemetry is the "last query" record every executor maintains after
// each execution (§4.6): sql, parameters, elapsed time, row count, and
// the statement id, surfaced to a configured query logger when debug
// mode is on.
type Telemetry struct {
	StatementID   string
	SQL           string
	Parameters    map[string]any
	ElapsedMillis int64
	RowCount      int
}

// QueryLogger receives telemetry for every execution when
// Settings.DebugMode is enabled.
type QueryLogger interface {
	LogQuery(t Telemetry)
}
