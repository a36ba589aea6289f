// Package history persists finished analysis runs in SQLite.
//
// The Store manages database connections, schema migrations, and the
// run and chunk tables the CLI reads back for inspection. Each run
// records the inputs, the selected delay, and the drift verdict; chunk
// rows keep the per-chunk measurements behind the selection.
//
// Writes serialize through a file lock in the state directory so
// concurrent analyses never interleave inserts. The database is an
// archive of results, not coordination state; deleting it only loses
// history.
package history
