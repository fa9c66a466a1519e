// Package migrations embeds the CLI's local sqlite schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
