// Package migrations embeds the SQL schema files for every backend.
package migrations

import "embed"

// FS holds sqlite/*.sql for the local store and postgres/*.sql for the
// shared achievements database.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
