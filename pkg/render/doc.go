// Package render formats documents and item text for terminal output.
//
// Syntax highlighting uses chroma with a formatter picked from the
// terminal's color profile; diffs are unified diffs produced by go-udiff and
// colored per line. Helpers for wrapping, truncating and fuzzy matching
// operate on ANSI-styled text.
package render
