// Package migrations contiene las migraciones SQL del store SQLite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
