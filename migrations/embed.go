// Package migrations carries the versioned SQL schema embedded into the binaries.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
