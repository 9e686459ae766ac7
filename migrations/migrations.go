// Package migrations embeds the SQL schema migrations for every supported backend.
package migrations

import "embed"

// FS holds the sqlite/ and postgres/ migration directories
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
