// Package migrations embeds the Postgres schema for render jobs.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
