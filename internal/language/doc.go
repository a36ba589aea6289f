// Package language normalizes language identifiers between the forms
// container tooling uses: ISO 639-1 two-letter codes, ISO 639-2
// three-letter codes (what mkvmerge track options expect), full English
// words found in tags and filenames, and display names for reports.
package language
