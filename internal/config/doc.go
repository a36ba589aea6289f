// Package config loads, normalizes, and validates lockstep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every
// knob the analyzer and CLI need: correlation strategy and chunking
// parameters, filter conditioning, drift diagnosis thresholds, delay
// selection, history persistence, and log output.
//
// Always obtain settings through this package so downstream code
// receives sanitized paths, canonical strategy names, and clear
// validation errors.
package config
