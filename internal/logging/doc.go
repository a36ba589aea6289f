// Package logging builds the slog loggers used across lockstep and
// standardizes their structured fields.
//
// New constructs either a human-oriented console handler or a JSON
// handler from Options; NewFromConfig maps application configuration
// onto those options. The package also exposes typed attribute
// helpers, the canonical Field* key constants (component, run_id,
// source, strategy, ...), component-scoped logger construction, and
// context plumbing so a run identifier set once at the CLI boundary
// appears on every record below it.
//
// Obtain loggers through this package rather than calling slog
// directly so field names stay consistent between console output,
// JSON output, and the run history store.
package logging
