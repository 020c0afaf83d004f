// Package migrations holds the folio.db schema as numbered NNN_name.up.sql
// scripts, applied in order by the sqlite store.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
