// Package mapio reads and writes the text formats of renaming tables.
//
// Supported inputs:
//
//   - TSRG2 (header "tsrg2 obf srg id"), falling back to TSRG v1 for any
//     stream whose first line is not exactly that header
//   - TSRG v1
//   - Tiny v1 and v2, with explicit source and destination namespaces
//
// Malformed records are reported as *diagnostic.ParseError carrying the
// 1-based line number and the raw text.
package mapio
