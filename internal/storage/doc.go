// Package storage persists the seen-set: the identifiers of entries that were
// already delivered.
//
// It currently supports:
//   - "file": append-only flat log, one identifier per line
//   - "memory": in-process only (tests, dry runs)
package storage
