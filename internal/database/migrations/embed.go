// Package migrations embeds the schema for each supported store driver.
package migrations

import "embed"

// Postgres holds the PostgreSQL schema files.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the SQLite schema files.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
