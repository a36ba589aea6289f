// Package mergeplan turns a user-authored track layout plus analysis
// results into an ordered merge plan and the mkvmerge argument vector
// that realizes it.
//
// A layout lists the output tracks in order: which source each comes
// from, its track id and type, and per-track overrides (default and
// forced flags, custom name and language, an external file path or
// sync target). Build resolves each entry against the source file
// paths, the finalized delay set, and per-source container metadata,
// failing fast on an empty layout, a missing source, or an external
// track without a file. BuildRemux is the degenerate variant for jobs
// with nothing to sync: same resolution, every delay zero.
//
// The plan is data. Rendering it with Tokens produces the mkvmerge
// command tokens; actually invoking the multiplexer is the caller's
// business.
package mergeplan
