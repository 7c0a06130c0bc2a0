//go:build cgo_sqlite

package storage

// Compiled with the cgo_sqlite tag. FTS5 must be enabled in the C library:
//
//   CGO_ENABLED=1 go build -tags "cgo_sqlite,sqlite_fts5" ./...
//
// Without sqlite_fts5 the index migration is skipped and every search takes the
// substring path.
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver to open.
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
